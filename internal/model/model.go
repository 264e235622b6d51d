// Package model defines the data structures used by the curator service: feed
// sources, transient fetch items, persisted articles, and the curated content
// returned to clients.
package model

import (
	"errors"
	"strings"
	"time"
)

type Feed struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Item is the normalized form of one syndication entry. It exists only for
// the duration of a fetch cycle; the store persists Articles.
type Item struct {
	SourceName string
	Title      string
	Link       string
	PubDate    time.Time
	ImageURL   string
}

// Article is the canonical persisted unit. Link is the identity key: two
// entries with the same link are the same article.
type Article struct {
	ID               int64     `db:"id" json:"-"`
	Source           string    `db:"source" json:"source"`
	Title            string    `db:"title" json:"title"`
	Link             string    `db:"link" json:"link"`
	PubDate          time.Time `db:"pub_date" json:"pubDate"`
	OriginalImageURL string    `db:"original_image_url" json:"originalImageUrl,omitempty"`
	FetchedAt        time.Time `db:"fetched_at" json:"fetchedAt"`
}

// ArticleFromItem converts a fetched item into its persistable form.
// FetchedAt is stamped by the store at write time, not here.
func ArticleFromItem(item Item) Article {
	return Article{
		Source:           item.SourceName,
		Title:            item.Title,
		Link:             item.Link,
		PubDate:          item.PubDate,
		OriginalImageURL: item.ImageURL,
	}
}

// CuratedContent is the per-request product of the curation facade. It is
// never persisted.
type CuratedContent struct {
	Headline       string   `json:"headline"`
	Description    string   `json:"description"`
	Caption        string   `json:"caption"`
	Images         []string `json:"images"`
	OriginalSource string   `json:"originalSource,omitempty"`
}

// CurateRequest is the boundary type for POST /api/curate. Validation and
// defaulting of external JSON happen here, once, rather than at every
// consumer.
type CurateRequest struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Link   string `json:"link"`
}

func (r *CurateRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Source = strings.TrimSpace(r.Source)
	if r.Title == "" {
		return errors.New("missing article title")
	}
	if r.Source == "" {
		r.Source = "Unknown"
	}
	return nil
}

// PreviewRequest is the boundary type for POST /api/generate-simple-preview.
type PreviewRequest struct {
	ImageURL    string `json:"imageUrl"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
}

func (r *PreviewRequest) Validate() error {
	if strings.TrimSpace(r.ImageURL) == "" {
		return errors.New("missing imageUrl")
	}
	if strings.TrimSpace(r.Headline) == "" {
		return errors.New("missing headline")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("missing description")
	}
	return nil
}

// ShareRequest is the boundary type for POST /api/share.
type ShareRequest struct {
	ImagePath string `json:"imagePath"`
	Caption   string `json:"caption"`
	Platform  string `json:"platform"`
}

func (r *ShareRequest) Validate() error {
	if strings.TrimSpace(r.Platform) == "" {
		return errors.New("missing platform")
	}
	return nil
}

// AddFeedRequest is the payload for registering a new feed.
type AddFeedRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (r *AddFeedRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.URL = strings.TrimSpace(r.URL)
	if r.Name == "" || r.URL == "" {
		return errors.New("name and url are required")
	}
	return nil
}
