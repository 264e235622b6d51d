package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phaseloop/curator/internal/model"
)

func TestBuildUpsertEmpty(t *testing.T) {
	query, args := buildUpsert(nil)

	assert.Empty(t, query)
	assert.Empty(t, args)
}

func TestBuildUpsertSingle(t *testing.T) {
	pub := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	query, args := buildUpsert([]model.Article{{
		Source:           "Pitchfork News",
		Title:            "Title",
		Link:             "https://x/1",
		PubDate:          pub,
		OriginalImageURL: "https://img/1.jpg",
	}})

	assert.Contains(t, query, "INSERT INTO articles")
	assert.Contains(t, query, "($1, $2, $3, $4, $5)")
	assert.Contains(t, query, "ON CONFLICT (link) DO UPDATE")
	assert.Contains(t, query, "fetched_at = NOW()")
	assert.Equal(t, []any{"Pitchfork News", "Title", "https://x/1", pub, "https://img/1.jpg"}, args)
}

func TestBuildUpsertNumbersPlaceholdersAcrossRows(t *testing.T) {
	query, args := buildUpsert([]model.Article{
		{Link: "https://x/1"},
		{Link: "https://x/2"},
	})

	assert.Contains(t, query, "($1, $2, $3, $4, $5)")
	assert.Contains(t, query, "($6, $7, $8, $9, $10)")
	assert.Len(t, args, 10)
}

func TestBuildUpsertDropsDuplicateLinks(t *testing.T) {
	// Postgres rejects two conflicting rows in one statement, so the builder
	// keeps only the first occurrence per link.
	query, args := buildUpsert([]model.Article{
		{Title: "first", Link: "https://x/1"},
		{Title: "second", Link: "https://x/1"},
		{Title: "other", Link: "https://x/2"},
	})

	require.Len(t, args, 10)
	assert.NotContains(t, query, "$11")
	assert.Contains(t, args, "first")
	assert.NotContains(t, args, "second")
}
