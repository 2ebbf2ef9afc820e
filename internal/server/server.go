// Package server exposes the session over HTTP so other processes can drive
// the morph, feed hand samples and manage photos.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arixlabs/treemorph/internal/imagery"
	"github.com/arixlabs/treemorph/internal/layout"
	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/photos"
	"github.com/arixlabs/treemorph/internal/scene"
)

// MaxUpload bounds uploaded image bodies.
const MaxUpload = 32 << 20

type Server struct {
	scene  *scene.Scene
	logger *slog.Logger
}

func New(s *scene.Scene, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{scene: s, logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleGetState)
		r.Put("/state", s.handlePutState)
		r.Post("/state/toggle", s.handleToggle)

		r.Post("/hand", s.handleHand)

		r.Get("/photos", s.handleListPhotos)
		r.Post("/photos", s.handleUpload)
		r.Delete("/photos/{id}", s.handleDeletePhoto)

		r.Put("/focus/{id}", s.handleFocus)
		r.Delete("/focus", s.handleDismiss)

		r.Get("/share", s.handleShare)
		r.Post("/import", s.handleImport)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type stateResponse struct {
	scene.Status
	Items []models.Photo `json:"items"`
}

func (s *Server) snapshot(ctx context.Context) (stateResponse, error) {
	var out stateResponse
	err := s.scene.Do(ctx, func(sc *scene.Scene) {
		out = stateResponse{Status: sc.Status(), Items: sc.Photos.All()}
	})
	return out, err
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	st, err := s.snapshot(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target models.MorphState `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.scene.Do(r.Context(), func(sc *scene.Scene) { sc.SetTarget(req.Target) }); err != nil {
		s.fail(w, err)
		return
	}
	s.handleGetState(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.scene.Do(r.Context(), func(sc *scene.Scene) { sc.Toggle() }); err != nil {
		s.fail(w, err)
		return
	}
	s.handleGetState(w, r)
}

// handleHand publishes straight to the mailbox; the next frame picks it up.
func (s *Server) handleHand(w http.ResponseWriter, r *http.Request) {
	var h models.HandData
	if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
		http.Error(w, "invalid hand sample: "+err.Error(), http.StatusBadRequest)
		return
	}
	if h.X < -1 || h.X > 1 || h.Y < -1 || h.Y > 1 {
		http.Error(w, "x and y must be within [-1, 1]", http.StatusBadRequest)
		return
	}
	s.scene.Hand.Publish(h)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	st, err := s.snapshot(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Items)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUpload))
	if err != nil {
		http.Error(w, "failed to read image: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	uri, err := imagery.DataURI(raw)
	if err != nil {
		s.fail(w, err)
		return
	}
	var p models.Photo
	if doErr := s.scene.Do(r.Context(), func(sc *scene.Scene) { p, err = sc.Upload(uri) }); doErr != nil {
		err = doErr
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var err error
	if doErr := s.scene.Do(r.Context(), func(sc *scene.Scene) { err = sc.Delete(id) }); doErr != nil {
		err = doErr
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var err error
	if doErr := s.scene.Do(r.Context(), func(sc *scene.Scene) { err = sc.Focus(id) }); doErr != nil {
		err = doErr
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := s.scene.Do(r.Context(), func(sc *scene.Scene) { sc.Dismiss() }); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		http.Error(w, "base is required", http.StatusBadRequest)
		return
	}
	var link string
	var err error
	if doErr := s.scene.Do(r.Context(), func(sc *scene.Scene) { link, err = sc.Share(base) }); doErr != nil {
		err = doErr
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUpload))
	if err != nil {
		http.Error(w, "failed to read layout: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	if doErr := s.scene.Do(r.Context(), func(sc *scene.Scene) { err = sc.Import(string(body)) }); doErr != nil {
		err = doErr
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.handleGetState(w, r)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, photos.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, photos.ErrDuplicateID), errors.Is(err, layout.ErrEmpty):
		return http.StatusConflict
	case errors.Is(err, layout.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, layout.ErrMalformed), errors.Is(err, layout.ErrNoLayout), errors.Is(err, photos.ErrEmptyID):
		return http.StatusBadRequest
	case errors.Is(err, imagery.ErrNotImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
