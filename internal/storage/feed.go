package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/phaseloop/curator/internal/model"
)

type FeedPostgresStorage struct {
	db *sqlx.DB
}

func NewFeedStorage(db *sqlx.DB) *FeedPostgresStorage {
	return &FeedPostgresStorage{db: db}
}

func (s *FeedPostgresStorage) Feeds(ctx context.Context) ([]model.Feed, error) {
	feeds := []model.Feed{}

	err := s.db.SelectContext(ctx, &feeds,
		`SELECT id, name, url, created_at FROM feeds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select feeds: %w", err)
	}

	return feeds, nil
}

// Add registers a feed, keyed by URL. Re-adding an existing URL updates its
// display name and returns the existing id.
func (s *FeedPostgresStorage) Add(ctx context.Context, feed model.Feed) (int64, error) {
	var id int64

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO feeds (name, url) VALUES ($1, $2)
		 ON CONFLICT (url) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		feed.Name, feed.URL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert feed: %w", err)
	}

	return id, nil
}

func (s *FeedPostgresStorage) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// Seed upserts the default feed list. Idempotent across restarts.
func (s *FeedPostgresStorage) Seed(ctx context.Context, feeds []model.Feed) error {
	for _, feed := range feeds {
		if _, err := s.Add(ctx, feed); err != nil {
			return err
		}
	}

	log.Printf("[INFO] seeded %d default feeds", len(feeds))
	return nil
}
