package domain

import (
	"errors"
	"time"
)

// ErrPostNotFound indicates the journal has no entry for a message id
var ErrPostNotFound = errors.New("post not found in journal")

// PostRecord is the journal entry written for every accepted article.
type PostRecord struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	Newsgroups string    `json:"newsgroups"`
	Subject    string    `json:"subject"`
	Provider   string    `json:"provider"`
	Digest     string    `json:"digest"`
	Lines      int       `json:"lines"`
	PostedAt   time.Time `json:"posted_at"`
}
