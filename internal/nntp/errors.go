package nntp

import (
	"errors"
	"fmt"
)

var (
	// ErrArgumentNull indicates a required argument was nil
	ErrArgumentNull = errors.New("argument is nil")
	// ErrArgumentEmpty indicates a required string was empty or whitespace
	ErrArgumentEmpty = errors.New("argument is empty")
	// ErrReservedHeader is returned when a protocol header goes through AddHeader
	ErrReservedHeader = errors.New("header is reserved and has a dedicated setter")
	// ErrMissingRequiredHeader is returned by Build when a mandatory field is unset
	ErrMissingRequiredHeader = errors.New("missing required header")

	// ErrProtocol marks every failure of a command/response exchange
	ErrProtocol = errors.New("nntp protocol error")
	// ErrUnexpectedStatus indicates a status code the parser did not expect
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMalformedResponse indicates server output that could not be parsed
	ErrMalformedResponse = errors.New("malformed response")

	ErrArticleNotFound     = errors.New("article not found (430)")
	ErrNoSuchGroup         = errors.New("no such newsgroup (411)")
	ErrPostingNotPermitted = errors.New("posting not permitted (440)")
	ErrPostingFailed       = errors.New("posting failed (441)")
	ErrAuthRejected        = errors.New("authentication rejected")

	// ErrPostUnconfirmed means the article was sent but the server's
	// reply was lost. The server may have accepted it.
	ErrPostUnconfirmed = errors.New("post sent but not confirmed")

	// ErrProviderBusy indicates all nntp connections are in use
	ErrProviderBusy = errors.New("all providers busy")
)

// ArgumentError names the builder parameter that was rejected.
type ArgumentError struct {
	Param string
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Param, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// HeaderError names the header a builder operation failed on.
type HeaderError struct {
	Header string
	Err    error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Header)
}

func (e *HeaderError) Unwrap() error { return e.Err }

// ProtocolError is returned for any failed exchange with the server.
// Lines holds the raw response lines that caused it, when there were any.
type ProtocolError struct {
	Op    string
	Lines []string
	Err   error
}

func (e *ProtocolError) Error() string {
	if len(e.Lines) == 0 {
		return fmt.Sprintf("nntp %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("nntp %s: %v: %q", e.Op, e.Err, e.Lines)
}

// Unwrap lets errors.Is match both ErrProtocol and the underlying cause.
func (e *ProtocolError) Unwrap() []error {
	return []error{ErrProtocol, e.Err}
}

func protocolError(op string, err error, lines ...string) error {
	return &ProtocolError{Op: op, Lines: lines, Err: err}
}
