// Package importer turns messages from an mbox archive into article
// builders ready to be posted.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	mboxlib "github.com/emersion/go-mbox"
	"github.com/emersion/go-message/textproto"

	"github.com/datallboy/gonntp/internal/nntp"
)

// skipHeaders are transport headers that must not be reposted.
var skipHeaders = map[string]struct{}{
	"Path":              {},
	"Xref":              {},
	"Lines":             {},
	"Bytes":             {},
	"Return-Path":       {},
	"Received":          {},
	"Delivered-To":      {},
	"Nntp-Posting-Host": {},
	"Nntp-Posting-Date": {},
	"Injection-Info":    {},
	"Injection-Date":    {},
}

type Options struct {
	// Groups replaces any Newsgroups header of the imported messages.
	Groups []string
	// KeepMessageID reuses the message's Message-Id. When false the
	// poster generates a fresh one.
	KeepMessageID bool
}

// ReadMbox parses every message of r into a builder. Messages that
// fail to parse are reported by index and skipped.
func ReadMbox(r io.Reader, opts Options) ([]*nntp.Builder, error) {
	if len(opts.Groups) == 0 {
		return nil, errors.New("importer: at least one target group is required")
	}

	mr := mboxlib.NewReader(r)

	var builders []*nntp.Builder
	var errs []error
	for i := 0; ; i++ {
		msg, err := mr.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return builders, fmt.Errorf("read mbox message %d: %w", i, err)
		}

		b, err := ReadMessage(msg, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("message %d: %w", i, err))
			continue
		}
		builders = append(builders, b)
	}
	return builders, errors.Join(errs...)
}

// ReadMessage parses one RFC 5322 message into a builder.
func ReadMessage(r io.Reader, opts Options) (*nntp.Builder, error) {
	br := bufio.NewReader(r)
	h, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	b := nntp.NewBuilder()
	for _, g := range opts.Groups {
		b.AddGroup(g)
	}

	fields := h.Fields()
	for fields.Next() {
		// ReadHeader already canonicalized the key
		key := fields.Key()
		value := strings.TrimSpace(fields.Value())
		if value == "" {
			continue
		}

		switch key {
		case "Message-Id":
			if opts.KeepMessageID {
				b.SetMessageID(value)
			}
		case nntp.HeaderFrom:
			b.SetFrom(value)
		case nntp.HeaderSubject:
			b.SetSubject(value)
		case nntp.HeaderNewsgroups:
		default:
			if _, skip := skipHeaders[key]; skip {
				continue
			}
			if err := b.AddHeader(key, value); err != nil {
				return nil, err
			}
		}
	}

	body, err := readLines(br)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	b.SetBody(body)
	return b, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}
