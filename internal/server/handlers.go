package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/phaseloop/curator/internal/model"
	"github.com/phaseloop/curator/internal/overlay"
	"github.com/phaseloop/curator/internal/share"
	"github.com/phaseloop/curator/internal/storage"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Phase Loop Records API is running!"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.articles.All(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to read articles: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve articles.")
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.Feeds(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to list feeds: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list feeds.")
		return
	}
	writeJSON(w, http.StatusOK, feeds)
}

func (s *Server) handleAddFeed(w http.ResponseWriter, r *http.Request) {
	var req model.AddFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.probe(r.Context(), req.URL); err != nil {
		log.Printf("[ERROR] feed probe failed for %s: %v", req.URL, err)
		writeError(w, http.StatusBadRequest, "feed URL did not return a parseable feed")
		return
	}

	id, err := s.feeds.Add(r.Context(), model.Feed{Name: req.Name, URL: req.URL})
	if err != nil {
		log.Printf("[ERROR] failed to add feed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to add feed.")
		return
	}

	log.Printf("[INFO] feed added: %s (%d)", req.Name, id)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name, "url": req.URL})
}

func (s *Server) handleDeleteFeed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feed id")
		return
	}

	if err := s.feeds.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "feed not found")
			return
		}
		log.Printf("[ERROR] failed to delete feed %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete feed.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "feed removed"})
}

func (s *Server) handleCurate(w http.ResponseWriter, r *http.Request) {
	var req model.CurateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Missing article data.")
		return
	}

	// Curate never fails: AI trouble degrades to placeholder copy and
	// search trouble to an empty image list.
	writeJSON(w, http.StatusOK, s.curator.Curate(r.Context(), req))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req model.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Missing data for preview.")
		return
	}

	// Vector clients can ask for the overlay band alone, no image fetch.
	if r.URL.Query().Get("format") == "svg" {
		spec := overlay.Compute(req.Headline, req.Description, s.previewSize, s.previewSize)
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(spec.SVG()))
		return
	}

	path, err := s.renderer.Render(r.Context(), req.ImageURL, req.Headline, req.Description)
	if err != nil {
		if errors.Is(err, overlay.ErrImageAcquisition) {
			log.Printf("[ERROR] preview image acquisition failed: %v", err)
			writeJSON(w, http.StatusOK, map[string]string{
				"previewImagePath": s.fallbackImage,
				"error":            "source image unavailable, using fallback",
			})
			return
		}
		log.Printf("[ERROR] preview rendering failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate simple preview.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"previewImagePath": path})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req model.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := s.sharer.Share(req)
	if err != nil {
		if errors.Is(err, share.ErrPlatformRestricted) {
			writeError(w, http.StatusForbidden, "Instagram Story posting via API is restricted.")
			return
		}
		log.Printf("[ERROR] share to %s failed: %v", req.Platform, err)
		writeError(w, http.StatusInternalServerError, "Share failed.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}
