// Package imagesearch finds candidate images for a query via the Google
// Custom Search JSON API.
package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	endpoint       = "https://customsearch.googleapis.com/customsearch/v1"
	resultsPerPage = 9
	searchTimeout  = 15 * time.Second
)

var ErrNotConfigured = errors.New("image search api key or cx not configured")

type GoogleSearcher struct {
	apiKey string
	cx     string
	client *http.Client
}

func NewGoogleSearcher(apiKey, cx string) *GoogleSearcher {
	return &GoogleSearcher{
		apiKey: apiKey,
		cx:     cx,
		client: &http.Client{Timeout: searchTimeout},
	}
}

type Result struct {
	URL        string
	Width      int
	Height     int
	ContextURL string
}

type searchResponse struct {
	Items []struct {
		Link  string `json:"link"`
		Image struct {
			Width       int    `json:"width"`
			Height      int    `json:"height"`
			ContextLink string `json:"contextLink"`
		} `json:"image"`
	} `json:"items"`
}

// Search returns up to one page of image results for a free-text query.
// start is a 1-based pagination offset; pass 0 for the first page. Zero
// results is not an error.
func (g *GoogleSearcher) Search(ctx context.Context, query string, start int) ([]Result, error) {
	if g.apiKey == "" || g.cx == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cx)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("num", strconv.Itoa(resultsPerPage))
	params.Set("safe", "high")
	if start > 0 {
		params.Set("start", strconv.Itoa(start))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode image search response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, Result{
			URL:        item.Link,
			Width:      item.Image.Width,
			Height:     item.Image.Height,
			ContextURL: item.Image.ContextLink,
		})
	}

	return results, nil
}
