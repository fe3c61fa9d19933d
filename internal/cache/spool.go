// Package cache keeps articles on disk so repeated fetches do not go
// back to the providers.
package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/datallboy/gonntp/internal/nntp"
)

// ArticleSpool stores each article as the ARTICLE response a server
// would send for it: a 220 status line, the wire form and the final ".".
// Files are named by the BLAKE3 hash of the message id.
type ArticleSpool struct {
	Dir string
}

func (s *ArticleSpool) path(id nntp.MessageID) string {
	sum := blake3.Sum256([]byte(id.String()))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(s.Dir, name[:2], name+".art")
}

func (s *ArticleSpool) Get(id nntp.MessageID) (*nntp.Article, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}

	p := nntp.NewArticleParser()
	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n") {
		done, err := p.Feed(line)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return p.Result()
}

// Put writes a through a temporary file so readers never see a partial
// article.
func (s *ArticleSpool) Put(a *nntp.Article) error {
	lines := nntp.LineBuffer{fmt.Sprintf("220 %d %s", a.Number(), a.MessageID())}
	if err := nntp.WriteArticle(&lines, a); err != nil {
		return err
	}

	path := s.path(a.MessageID())
	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strings.Join(lines, "\r\n") + "\r\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *ArticleSpool) Exists(id nntp.MessageID) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}
