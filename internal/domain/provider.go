package domain

// ProviderConfig is the Domain's contract for what it needs to start a provider.
type ProviderConfig struct {
	ID            string
	Host          string
	Port          int
	Username      string
	Password      string
	TLS           bool
	MaxConnection int
	Priority      int
}
