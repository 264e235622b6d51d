// Package source implements the RSSSource struct and its methods for fetching
// and normalizing syndication feed items.
package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"github.com/phaseloop/curator/internal/model"
)

type RSSSource struct {
	URL        string
	SourceID   int64
	SourceName string

	itemLimit int
	parser    *gofeed.Parser
	timeout   time.Duration
}

func NewRSSSourceFromModel(m model.Feed, itemLimit int, timeout time.Duration) *RSSSource {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	return &RSSSource{
		URL:        m.URL,
		SourceID:   m.ID,
		SourceName: m.Name,
		itemLimit:  itemLimit,
		parser:     parser,
		timeout:    timeout,
	}
}

// Fetch retrieves the feed and returns at most itemLimit normalized items, in
// the order the upstream feed provides them.
func (s *RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(s.URL, ctx)
	if err != nil {
		return nil, err
	}

	items := feed.Items
	if s.itemLimit > 0 && len(items) > s.itemLimit {
		items = items[:s.itemLimit]
	}

	return lo.Map(items, func(item *gofeed.Item, _ int) model.Item {
		return model.Item{
			SourceName: s.SourceName,
			Title:      item.Title,
			Link:       item.Link,
			PubDate:    itemDate(item),
			ImageURL:   itemImageURL(item),
		}
	}), nil
}

// itemDate resolves the publish timestamp for an item. Feeds that omit or
// mangle the date get the ingestion time instead of failing the item.
func itemDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Now().UTC()
}

// itemImageURL applies the ordered image policy: an enclosure declared as an
// image wins, then a media:content URL; no image is not an error.
func itemImageURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "image") {
			return enc.URL
		}
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if url := content.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	return ""
}

func (s *RSSSource) ID() int64 {
	return s.SourceID
}

func (s *RSSSource) Name() string {
	return s.SourceName
}
