// Package server exposes the curator service over HTTP: stored articles,
// feed management, curation, preview rendering, and sharing.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/phaseloop/curator/internal/model"
)

type ArticleProvider interface {
	All(ctx context.Context) ([]model.Article, error)
}

type FeedStorage interface {
	Feeds(ctx context.Context) ([]model.Feed, error)
	Add(ctx context.Context, feed model.Feed) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type Curator interface {
	Curate(ctx context.Context, article model.CurateRequest) model.CuratedContent
}

type PreviewRenderer interface {
	Render(ctx context.Context, imageURL, headline, description string) (string, error)
}

type Sharer interface {
	Share(req model.ShareRequest) (string, error)
}

// FeedProber validates a feed URL before it is accepted; swapped in tests.
type FeedProber func(ctx context.Context, url string) error

type Server struct {
	articles ArticleProvider
	feeds    FeedStorage
	curator  Curator
	renderer PreviewRenderer
	sharer   Sharer
	probe    FeedProber

	previewSize   int
	fallbackImage string

	mux *http.ServeMux
}

func New(
	articles ArticleProvider,
	feeds FeedStorage,
	curator Curator,
	renderer PreviewRenderer,
	sharer Sharer,
	probe FeedProber,
	previewSize int,
	fallbackImage string,
	publicDir string,
) *Server {
	s := &Server{
		articles:      articles,
		feeds:         feeds,
		curator:       curator,
		renderer:      renderer,
		sharer:        sharer,
		probe:         probe,
		previewSize:   previewSize,
		fallbackImage: fallbackImage,
		mux:           http.NewServeMux(),
	}
	s.routes(publicDir)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	log.Printf("[INFO] %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
}

func (s *Server) routes(publicDir string) {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.Handle("GET /", http.FileServer(http.Dir(publicDir)))

	s.mux.HandleFunc("GET /api/news", s.handleNews)

	s.mux.HandleFunc("GET /api/feeds", s.handleListFeeds)
	s.mux.HandleFunc("POST /api/feeds", s.handleAddFeed)
	s.mux.HandleFunc("DELETE /api/feeds/{id}", s.handleDeleteFeed)

	s.mux.HandleFunc("POST /api/curate", s.handleCurate)
	s.mux.HandleFunc("POST /api/generate-simple-preview", s.handlePreview)
	s.mux.HandleFunc("POST /api/share", s.handleShare)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[ERROR] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
