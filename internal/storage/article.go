package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/phaseloop/curator/internal/model"
)

type ArticlePostgresStorage struct {
	db *sqlx.DB
}

func NewArticleStorage(db *sqlx.DB) *ArticlePostgresStorage {
	return &ArticlePostgresStorage{db: db}
}

// UpsertBatch writes the whole batch in one multi-row statement, keyed by
// link: unseen links insert, known links have their fields replaced and
// fetched_at refreshed.
func (s *ArticlePostgresStorage) UpsertBatch(ctx context.Context, articles []model.Article) error {
	query, args := buildUpsert(articles)
	if query == "" {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert articles: %w", err)
	}

	return nil
}

// buildUpsert renders the bulk upsert statement. Postgres rejects two
// conflicting rows within a single INSERT ... ON CONFLICT, so when the same
// link appears more than once in the batch only the first occurrence is
// kept (the batch arrives newest-first).
func buildUpsert(articles []model.Article) (string, []any) {
	if len(articles) == 0 {
		return "", nil
	}

	var (
		values []string
		args   []any
		seen   = make(map[string]bool, len(articles))
	)

	for _, a := range articles {
		if seen[a.Link] {
			continue
		}
		seen[a.Link] = true

		base := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, a.Source, a.Title, a.Link, a.PubDate, a.OriginalImageURL)
	}

	query := `INSERT INTO articles (source, title, link, pub_date, original_image_url) VALUES ` +
		strings.Join(values, ", ") +
		` ON CONFLICT (link) DO UPDATE SET
			source = EXCLUDED.source,
			title = EXCLUDED.title,
			pub_date = EXCLUDED.pub_date,
			original_image_url = EXCLUDED.original_image_url,
			fetched_at = NOW()`

	return query, args
}

// All returns every stored article, newest first.
func (s *ArticlePostgresStorage) All(ctx context.Context) ([]model.Article, error) {
	articles := []model.Article{}

	err := s.db.SelectContext(ctx, &articles,
		`SELECT id, source, title, link, pub_date, original_image_url, fetched_at
		 FROM articles
		 ORDER BY pub_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}

	return articles, nil
}
