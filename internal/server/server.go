// Package server exposes the badge rendering pipeline over HTTP. Handlers
// are thin: validate, fetch, project, render, stream. All geometry and
// drawing live below in internal/badge and internal/layout.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/confab/badgeforge/internal/assets"
	"github.com/confab/badgeforge/internal/attendee"
	"github.com/confab/badgeforge/internal/badge"
	"github.com/confab/badgeforge/internal/preview"
	"github.com/confab/badgeforge/internal/store"
)

const (
	defaultLogoAsset       = "logo.png"
	defaultBackgroundAsset = "background.jpg"
)

// AttendeeSource is what the handlers need from the document store.
type AttendeeSource interface {
	Event(ctx context.Context, eventID string) (*store.Event, error)
	Attendees(ctx context.Context, eventID string) ([]attendee.Record, error)
}

type Server struct {
	log           *zap.Logger
	source        AttendeeSource
	renderer      *badge.Renderer
	fetcher       *assets.Fetcher
	cache         *assets.Cache
	publicBaseURL string
	production    bool
}

func New(log *zap.Logger, source AttendeeSource, fetcher *assets.Fetcher, cache *assets.Cache, publicBaseURL string, production bool) *Server {
	return &Server{
		log:           log,
		source:        source,
		renderer:      badge.NewRenderer(log),
		fetcher:       fetcher,
		cache:         cache,
		publicBaseURL: publicBaseURL,
		production:    production,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events/{id}/badges.pdf", s.handleSheet)
	mux.HandleFunc("GET /api/events/{id}/badges-single.pdf", s.handleSingle)
	mux.HandleFunc("GET /api/events/{id}/attendees/{uid}/badge-preview", s.handlePreview)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s.withLogging(s.withRecovery(mux))
}

// handleSheet serves the 4-up A4 document. Theme URLs are optional; when
// absent the local default assets are used if present, and their absence is
// a soft miss, not an error.
func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		s.writeError(w, http.StatusBadRequest, "eventId is required")
		return
	}

	theme := badge.DefaultTheme()
	if err := s.applyThemeParams(&theme, r); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, ok := s.loadAttendees(r.Context(), w, eventID, &theme,
		r.URL.Query().Get("backgroundImageUrl"), r.URL.Query().Get("logoUrl"))
	if !ok {
		return
	}

	projected := s.project(records, eventID)
	pdfBytes, err := s.renderer.RenderSheet(projected, theme)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writePDF(w, eventID, pdfBytes)
}

// handleSingle serves the 1-up variant. The enhanced theme is mandatory
// here: both image URLs must be supplied.
func (s *Server) handleSingle(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		s.writeError(w, http.StatusBadRequest, "eventId is required")
		return
	}
	bgURL := r.URL.Query().Get("backgroundImageUrl")
	logoURL := r.URL.Query().Get("logoUrl")
	if bgURL == "" || logoURL == "" {
		s.writeError(w, http.StatusBadRequest, "backgroundImageUrl and logoUrl are required")
		return
	}

	theme := badge.DefaultTheme()
	if err := s.applyThemeParams(&theme, r); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, ok := s.loadAttendees(r.Context(), w, eventID, &theme, bgURL, logoURL)
	if !ok {
		return
	}

	projected := s.project(records, eventID)
	pdfBytes, err := s.renderer.RenderSingle(projected, theme)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writePDF(w, eventID, pdfBytes)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	userID := r.PathValue("uid")

	records, err := s.source.Attendees(r.Context(), eventID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	var found *attendee.Record
	for i := range records {
		if records[i].ID == userID {
			found = &records[i]
			break
		}
	}
	if found == nil {
		s.writeError(w, http.StatusNotFound, "attendee not found")
		return
	}

	theme := preview.Theme{
		BackgroundURL:  r.URL.Query().Get("backgroundImageUrl"),
		LogoURL:        r.URL.Query().Get("logoUrl"),
		OverlayOpacity: badge.DefaultTheme().OverlayOpacity,
		HeaderColorHex: badge.DefaultTheme().HeaderColor.Hex(),
		BrandWord:      badge.DefaultTheme().BrandWord,
	}
	if raw := r.URL.Query().Get("overlayOpacity"); raw != "" {
		opacity, err := parseOverlayOpacity(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		theme.OverlayOpacity = opacity
	}
	if raw := r.URL.Query().Get("headerColor"); raw != "" {
		c, err := badge.ParseHexColor(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		theme.HeaderColorHex = c.Hex()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	proj := attendee.Project(*found, eventID, s.publicBaseURL)
	if err := preview.Render(w, proj, theme); err != nil {
		s.log.Error("preview render failed", zap.Error(err))
	}
}

// loadAttendees resolves the event, its attendees, and any theme images in
// parallel. The hard/soft decision is per image: an explicitly supplied URL
// that cannot be fetched or decoded fails the request, while the implicit
// local default assets are a soft miss the render proceeds without.
func (s *Server) loadAttendees(ctx context.Context, w http.ResponseWriter, eventID string, theme *badge.Theme, bgURL, logoURL string) ([]attendee.Record, bool) {
	var records []attendee.Record
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if _, err := s.source.Event(gctx, eventID); err != nil {
			return err
		}
		var err error
		records, err = s.source.Attendees(gctx, eventID)
		return err
	})
	g.Go(func() error {
		img, err := s.themeImage(bgURL, defaultBackgroundAsset)
		if err != nil {
			if bgURL != "" {
				return err
			}
			s.log.Warn("default background unavailable, rendering without it", zap.Error(err))
			return nil
		}
		theme.Background = img
		return nil
	})
	g.Go(func() error {
		img, err := s.themeImage(logoURL, defaultLogoAsset)
		if err != nil {
			if logoURL != "" {
				return err
			}
			s.log.Warn("default logo unavailable, rendering without it", zap.Error(err))
			return nil
		}
		theme.Logo = img
		return nil
	})

	if err := g.Wait(); err != nil {
		switch {
		case errors.Is(err, store.ErrEventNotFound):
			s.writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, assets.ErrUnsupportedImage):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, assets.ErrFetch):
			s.writeError(w, http.StatusInternalServerError, err.Error())
		default:
			s.internalErrorCtx(w, err)
		}
		return nil, false
	}
	if len(records) == 0 {
		s.writeError(w, http.StatusNotFound, "no attendees found for this event")
		return nil, false
	}
	return records, true
}

// themeImage fetches a caller-supplied URL, or falls back to the local
// asset cache when no URL was given.
func (s *Server) themeImage(url, defaultName string) (*assets.Image, error) {
	if url != "" {
		return s.fetcher.Fetch(url)
	}
	return s.cache.Load(defaultName)
}

func (s *Server) applyThemeParams(theme *badge.Theme, r *http.Request) error {
	if raw := r.URL.Query().Get("overlayOpacity"); raw != "" {
		opacity, err := parseOverlayOpacity(raw)
		if err != nil {
			return err
		}
		theme.OverlayOpacity = opacity
	}
	if raw := r.URL.Query().Get("headerColor"); raw != "" {
		c, err := badge.ParseHexColor(raw)
		if err != nil {
			return err
		}
		theme.HeaderColor = c
	}
	return nil
}

func parseOverlayOpacity(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("overlayOpacity must be a number between 0 and 100")
	}
	return v / 100, nil
}

func (s *Server) project(records []attendee.Record, eventID string) []attendee.Projected {
	projected := make([]attendee.Projected, len(records))
	for i, rec := range records {
		projected[i] = attendee.Project(rec, eventID, s.publicBaseURL)
	}
	return projected
}

func writePDF(w http.ResponseWriter, eventID string, pdfBytes []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "badges-"+eventID+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("render failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.internalErrorCtx(w, err)
}

func (s *Server) internalErrorCtx(w http.ResponseWriter, err error) {
	msg := "internal server error"
	if !s.production {
		msg = err.Error()
	}
	s.writeError(w, http.StatusInternalServerError, msg)
}
