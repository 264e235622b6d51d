package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Probe fetches and parses a feed URL once, without keeping anything.
// Used to reject broken feeds at registration time.
func Probe(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	if _, err := parser.ParseURLWithContext(url, ctx); err != nil {
		return fmt.Errorf("probe feed %s: %w", url, err)
	}
	return nil
}
