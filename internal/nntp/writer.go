package nntp

import (
	"encoding/hex"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
)

// MaxHeaderLineLength is the longest header line emitted before folding.
const MaxHeaderLineLength = 998

// LineWriter accepts one protocol line per call, without its terminator.
type LineWriter interface {
	WriteLine(line string) error
}

// WriteArticle streams a in wire order: Message-ID, Newsgroups, the
// remaining headers, a blank line, the dot-stuffed body and the lone
// "." terminator. Message-ID and Newsgroups entries in the header store
// are skipped since both are emitted up front.
func WriteArticle(w LineWriter, a *Article) error {
	if a == nil {
		return &ArgumentError{Param: "article", Err: ErrArgumentNull}
	}

	id := NormalizeMessageID(a.MessageID().String())
	if err := writeHeader(w, HeaderMessageID, id.String()); err != nil {
		return err
	}
	if err := writeHeader(w, HeaderNewsgroups, a.Newsgroups()); err != nil {
		return err
	}

	var err error
	a.RangeHeaders(func(k, v string) bool {
		if k == HeaderMessageID || k == HeaderNewsgroups {
			return true
		}
		err = writeHeader(w, k, v)
		return err == nil
	})
	if err != nil {
		return err
	}

	if err := w.WriteLine(""); err != nil {
		return err
	}
	for _, line := range a.body {
		if err := w.WriteLine(StuffLine(line)); err != nil {
			return err
		}
	}
	return w.WriteLine(".")
}

func writeHeader(w LineWriter, key, value string) error {
	for _, line := range FoldHeader(key, value) {
		if err := w.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// FoldHeader composes "key: value" and splits it when it is longer than
// MaxHeaderLineLength characters. The first line carries exactly that
// many characters. Each continuation line is a tab followed by at most
// MaxHeaderLineLength-1 characters. Splits fall on character counts,
// not word boundaries.
func FoldHeader(key, value string) []string {
	full := []rune(key + ": " + value)
	if len(full) <= MaxHeaderLineLength {
		return []string{string(full)}
	}

	lines := []string{string(full[:MaxHeaderLineLength])}
	rest := full[MaxHeaderLineLength:]
	for len(rest) > MaxHeaderLineLength-1 {
		lines = append(lines, "\t"+string(rest[:MaxHeaderLineLength-1]))
		rest = rest[MaxHeaderLineLength-1:]
	}
	return append(lines, "\t"+string(rest))
}

// StuffLine doubles a leading '.' so the line cannot be taken for the
// terminator.
func StuffLine(line string) string {
	if strings.HasPrefix(line, ".") {
		return "." + line
	}
	return line
}

// UnstuffLine reverses StuffLine for a line received inside a data block.
func UnstuffLine(line string) string {
	if strings.HasPrefix(line, "..") {
		return line[1:]
	}
	return line
}

// LineBuffer collects written lines in memory.
type LineBuffer []string

func (b *LineBuffer) WriteLine(line string) error {
	*b = append(*b, line)
	return nil
}

// DigestWriter forwards lines to an underlying writer while hashing them
// with BLAKE3 in their CRLF-terminated wire form.
type DigestWriter struct {
	next  LineWriter
	hash  hash.Hash
	lines int
}

func NewDigestWriter(next LineWriter) *DigestWriter {
	return &DigestWriter{next: next, hash: blake3.New()}
}

func (d *DigestWriter) WriteLine(line string) error {
	if err := d.next.WriteLine(line); err != nil {
		return err
	}
	d.hash.Write([]byte(line))
	d.hash.Write([]byte("\r\n"))
	d.lines++
	return nil
}

// Sum returns the hex digest of everything written so far.
func (d *DigestWriter) Sum() string {
	return hex.EncodeToString(d.hash.Sum(nil))
}

// Lines is the number of lines written so far.
func (d *DigestWriter) Lines() int { return d.lines }
