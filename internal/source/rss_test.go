package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phaseloop/curator/internal/model"
)

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func rssDocument(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>Test Feed</title>
<link>https://example.com</link>
` + strings.Join(items, "\n") + `
</channel>
</rss>`
}

func newTestSource(url string, limit int) *RSSSource {
	return NewRSSSourceFromModel(model.Feed{ID: 1, Name: "Test Feed", URL: url}, limit, 5*time.Second)
}

func TestFetchNormalizesItems(t *testing.T) {
	doc := rssDocument(
		`<item>
			<title>Enclosure Image</title>
			<link>https://example.com/1</link>
			<pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
			<enclosure url="https://img.example.com/enc.jpg" type="image/jpeg" length="1"/>
		</item>`,
		`<item>
			<title>Media Content</title>
			<link>https://example.com/2</link>
			<pubDate>Tue, 03 Jan 2006 15:04:05 GMT</pubDate>
			<enclosure url="https://cdn.example.com/a.mp3" type="audio/mpeg" length="1"/>
			<media:content url="https://img.example.com/media.jpg" medium="image"/>
		</item>`,
		`<item>
			<title>No Image</title>
			<link>https://example.com/3</link>
			<pubDate>Wed, 04 Jan 2006 15:04:05 GMT</pubDate>
		</item>`,
	)
	srv := serveFeed(t, doc)

	items, err := newTestSource(srv.URL, 5).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Enclosure Image", items[0].Title)
	assert.Equal(t, "https://example.com/1", items[0].Link)
	assert.Equal(t, "Test Feed", items[0].SourceName)
	assert.Equal(t, "https://img.example.com/enc.jpg", items[0].ImageURL,
		"image-typed enclosure wins")
	assert.True(t, items[0].PubDate.Equal(time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)))

	assert.Equal(t, "https://img.example.com/media.jpg", items[1].ImageURL,
		"non-image enclosure falls through to media:content")

	assert.Empty(t, items[2].ImageURL, "absent image is not an error")
}

func TestFetchDateFallback(t *testing.T) {
	doc := rssDocument(
		`<item><title>Undated</title><link>https://example.com/u</link></item>`,
	)
	srv := serveFeed(t, doc)

	before := time.Now().UTC()
	items, err := newTestSource(srv.URL, 5).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.False(t, items[0].PubDate.IsZero())
	assert.WithinDuration(t, before, items[0].PubDate, time.Minute,
		"missing date falls back to ingestion time")
}

func TestFetchCapsItemsPerFeed(t *testing.T) {
	var entries []string
	for i := 0; i < 20; i++ {
		entries = append(entries, fmt.Sprintf(
			`<item><title>Item %d</title><link>https://example.com/%d</link><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>`,
			i, i))
	}
	srv := serveFeed(t, rssDocument(entries...))

	items, err := newTestSource(srv.URL, 5).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 5, "fetcher contributes at most 5 items per feed")

	// Upstream order is preserved, not re-sorted.
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("Item %d", i), items[i].Title)
	}
}

func TestFetchMalformedFeed(t *testing.T) {
	srv := serveFeed(t, "definitely not xml")

	_, err := newTestSource(srv.URL, 5).Fetch(context.Background())
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	srv := serveFeed(t, rssDocument(
		`<item><title>Ok</title><link>https://example.com/ok</link></item>`,
	))

	assert.NoError(t, Probe(context.Background(), srv.URL, 5*time.Second))

	bad := serveFeed(t, "nope")
	assert.Error(t, Probe(context.Background(), bad.URL, 5*time.Second))
}
