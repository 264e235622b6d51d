package fetcher

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/phaseloop/curator/internal/model"
	"github.com/phaseloop/curator/internal/source"
)

type ArticleStorage interface {
	UpsertBatch(ctx context.Context, articles []model.Article) error
}

type FeedProvider interface {
	Feeds(ctx context.Context) ([]model.Feed, error)
}

type Source interface {
	ID() int64
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

type Fetcher struct {
	articles ArticleStorage
	feeds    FeedProvider

	fetchInterval time.Duration
	startDelay    time.Duration

	// newSource builds the fetch adapter for one feed; swapped in tests.
	newSource func(model.Feed) Source

	// running guards against overlapping cycles: a tick that arrives while a
	// cycle is still in flight is skipped, not queued.
	running sync.Mutex
}

func New(
	articles ArticleStorage,
	feeds FeedProvider,
	fetchInterval time.Duration,
	startDelay time.Duration,
	itemLimit int,
	feedTimeout time.Duration,
) *Fetcher {
	return &Fetcher{
		articles:      articles,
		feeds:         feeds,
		fetchInterval: fetchInterval,
		startDelay:    startDelay,
		newSource: func(feed model.Feed) Source {
			return source.NewRSSSourceFromModel(feed, itemLimit, feedTimeout)
		},
	}
}

// Start runs one cycle after the start delay and then a cycle per interval
// until ctx is cancelled. Cycle failures are logged, never fatal.
func (f *Fetcher) Start(ctx context.Context) error {
	log.Printf("[INFO] fetcher starting in %s, then every %s", f.startDelay, f.fetchInterval)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.startDelay):
	}

	f.runCycle(ctx)

	ticker := time.NewTicker(f.fetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.runCycle(ctx)
		}
	}
}

func (f *Fetcher) runCycle(ctx context.Context) {
	if err := f.Fetch(ctx); err != nil {
		log.Printf("[ERROR] fetch cycle failed: %v", err)
	}
}

type fetchResult struct {
	sourceName string
	items      []model.Item
	err        error
}

// Fetch performs one ingestion cycle: fan out over all feeds, reconcile the
// surviving items into one batch, and upsert it. A feed that fails
// contributes zero items and cannot abort the batch.
func (f *Fetcher) Fetch(ctx context.Context) error {
	if !f.running.TryLock() {
		log.Printf("[INFO] previous fetch cycle still running, skipping")
		return nil
	}
	defer f.running.Unlock()

	feeds, err := f.feeds.Feeds(ctx)
	if err != nil {
		return err
	}

	log.Printf("[INFO] fetch cycle starting for %d feeds", len(feeds))

	results := make(chan fetchResult, len(feeds))

	var wg sync.WaitGroup
	for _, feed := range feeds {
		wg.Add(1)

		go func(src Source) {
			defer wg.Done()

			items, err := src.Fetch(ctx)
			results <- fetchResult{sourceName: src.Name(), items: items, err: err}
		}(f.newSource(feed))
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []model.Item
	for res := range results {
		if res.err != nil {
			log.Printf("[ERROR] failed to fetch feed %q: %v", res.sourceName, res.err)
			continue
		}
		collected = append(collected, res.items...)
	}

	batch := Reconcile(collected)
	if len(batch) == 0 {
		log.Printf("[INFO] fetch cycle complete, nothing to store")
		return nil
	}

	articles := lo.Map(batch, func(item model.Item, _ int) model.Article {
		return model.ArticleFromItem(item)
	})

	if err := f.articles.UpsertBatch(ctx, articles); err != nil {
		log.Printf("[ERROR] failed to upsert batch of %d articles: %v", len(articles), err)
		return nil
	}

	log.Printf("[INFO] fetch cycle complete, %d items processed", len(batch))
	return nil
}

// Reconcile merges the per-feed items of one cycle into a single batch sorted
// by publish date descending across all feeds. Equal timestamps order by
// source name, then link, so batch order is deterministic regardless of
// which feed responded first.
func Reconcile(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.PubDate.Equal(b.PubDate) {
			return a.PubDate.After(b.PubDate)
		}
		if a.SourceName != b.SourceName {
			return a.SourceName < b.SourceName
		}
		return a.Link < b.Link
	})

	return out
}
