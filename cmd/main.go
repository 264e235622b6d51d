package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/phaseloop/curator/internal/config"
	"github.com/phaseloop/curator/internal/curator"
	"github.com/phaseloop/curator/internal/fetcher"
	"github.com/phaseloop/curator/internal/generate"
	"github.com/phaseloop/curator/internal/imagesearch"
	"github.com/phaseloop/curator/internal/model"
	"github.com/phaseloop/curator/internal/overlay"
	"github.com/phaseloop/curator/internal/server"
	"github.com/phaseloop/curator/internal/share"
	"github.com/phaseloop/curator/internal/source"
	"github.com/phaseloop/curator/internal/storage"
)

// defaultFeeds seeds the feed table on first boot; the HTTP API manages the
// list from there.
var defaultFeeds = []model.Feed{
	{Name: "Pitchfork News", URL: "https://pitchfork.com/rss/news/"},
	{Name: "Pitchfork Reviews", URL: "https://pitchfork.com/rss/reviews/albums/"},
	{Name: "Resident Advisor", URL: "https://ra.co/news.rss"},
}

func main() {
	cfg := config.Get()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Printf("[ERROR] failed to connect to db: %v", err)
		return
	}
	defer db.Close()

	if err := storage.InitSchema(ctx, db); err != nil {
		log.Printf("[ERROR] failed to init db schema: %v", err)
		return
	}

	var (
		articleStorage = storage.NewArticleStorage(db)
		feedStorage    = storage.NewFeedStorage(db)
		fetcher        = fetcher.New(
			articleStorage,
			feedStorage,
			cfg.FetchInterval,
			cfg.StartDelay,
			cfg.FeedItemLimit,
			cfg.FeedTimeout,
		)
	)

	if err := feedStorage.Seed(ctx, defaultFeeds); err != nil {
		log.Printf("[ERROR] failed to seed default feeds: %v", err)
	}

	var generator curator.Generator
	switch cfg.AIType {
	case "ollama":
		if cfg.AIBaseURL == "" {
			log.Printf("[ERROR] ai_base_url is required when ai_type is \"ollama\"")
			return
		}
		generator = generate.NewOllamaGenerator(cfg.AIBaseURL, cfg.AIModel, cfg.AITimeout)
		log.Printf("[INFO] using Ollama generator (model: %s)", cfg.AIModel)
	default:
		if cfg.AIKey == "" {
			log.Printf("[ERROR] ai_key is required when ai_type is \"openai\"")
			return
		}
		generator = generate.NewOpenAIGenerator(cfg.AIBaseURL, cfg.AIKey, cfg.AIModel, cfg.AITimeout)
		log.Printf("[INFO] using OpenAI-compatible generator (model: %s)", cfg.AIModel)
	}

	renderer, err := overlay.NewRenderer(cfg.PublicDir, cfg.PreviewSize)
	if err != nil {
		log.Printf("[ERROR] failed to create preview renderer: %v", err)
		return
	}

	var botAPI *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		botAPI, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Printf("[ERROR] failed to create telegram bot, sharing will be simulated: %v", err)
			botAPI = nil
		}
	}

	var (
		searcher = imagesearch.NewGoogleSearcher(cfg.SearchAPIKey, cfg.SearchCX)
		curation = curator.New(generator, searcher)
		sharer   = share.New(botAPI, cfg.TelegramChannelID, cfg.PublicDir)
	)

	srv := server.New(
		articleStorage,
		feedStorage,
		curation,
		renderer,
		sharer,
		func(ctx context.Context, url string) error {
			return source.Probe(ctx, url, cfg.FeedTimeout)
		},
		cfg.PreviewSize,
		cfg.FallbackImage,
		cfg.PublicDir,
	)

	go func(ctx context.Context) {
		if err := fetcher.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to run fetcher: %v", err)
				return
			}

			log.Printf("[INFO] fetcher stopped")
		}
	}(ctx)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[INFO] http server listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] failed to run http server: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http server shutdown: %v", err)
	}

	log.Printf("[INFO] server stopped")
}
