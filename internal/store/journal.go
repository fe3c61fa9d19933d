package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/datallboy/gonntp/internal/domain"
)

const postColumns = `id, message_id, newsgroups, subject, provider, digest, lines, posted_at`

// Record inserts rec, filling in ID and PostedAt when they are unset.
func (s *PersistentStore) Record(ctx context.Context, rec *domain.PostRecord) error {
	if rec.ID == "" {
		rec.ID = ksuid.New().String()
	}
	if rec.PostedAt.IsZero() {
		rec.PostedAt = time.Now().UTC()
	}

	var dbo postDBO
	dbo.FromDomain(rec)

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO posted_articles (`+postColumns+`)
		VALUES (:id, :message_id, :newsgroups, :subject, :provider, :digest, :lines, :posted_at)`, &dbo)
	if err != nil {
		return fmt.Errorf("failed to record post %s: %w", rec.MessageID, err)
	}
	return nil
}

// GetByMessageID returns the latest journal entry for a message id.
func (s *PersistentStore) GetByMessageID(ctx context.Context, messageID string) (*domain.PostRecord, error) {
	query := s.db.Rebind(`SELECT ` + postColumns + ` FROM posted_articles
		WHERE message_id = ? ORDER BY posted_at DESC, id DESC LIMIT 1`)

	var dbo postDBO
	if err := s.db.GetContext(ctx, &dbo, query, messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return dbo.ToDomain(), nil
}

// Recent lists the newest entries first.
func (s *PersistentStore) Recent(ctx context.Context, limit int) ([]*domain.PostRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.Rebind(`SELECT ` + postColumns + ` FROM posted_articles
		ORDER BY posted_at DESC, id DESC LIMIT ?`)

	var rows []postDBO
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}

	out := make([]*domain.PostRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}
