package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/docblocks/internal/docs"
	"github.com/conneroisu/docblocks/internal/errors"
	"github.com/conneroisu/docblocks/internal/version"
)

// Handler returns the HTTP handler with every route and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /docs/{page}", s.handlePage)
	mux.HandleFunc("GET /iframe.html", s.handleCanvas)
	mux.HandleFunc("POST /preview/{instance}/{action}", s.handleAction)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /ws", s.hub)

	return s.withMiddleware(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, Document("Docs", Index(s.builder.Pages(), s.registry.All())))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.builder.Page(r.Context(), r.PathValue("page"))
	s.metrics.ObservePage(err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, Document(page.Title, page.Component()))
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	story, ok := s.registry.Get(id)
	if !ok {
		s.writeError(w, r, errors.NewNotFoundError(errors.ErrCodeStoryNotFound, "story not found").
			WithContext("story", id))
		return
	}

	description, err := docs.Markdown(story.Description)
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, errors.ErrorTypeInternal, errors.ErrCodeInternalError, "failed to render story description"))
		return
	}

	s.render(w, r, http.StatusOK, Document(story.DisplayTitle(), Canvas(story.Node(), description)))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.store.Dispatch(r.Context(), r.PathValue("instance"), r.PathValue("action"), &buf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"version":    version.Short(),
		"build_info": version.Get(),
		"checks": map[string]interface{}{
			"registry": map[string]interface{}{"status": "healthy", "stories": s.registry.Count()},
			"sessions": map[string]interface{}{"status": "healthy", "instances": s.store.Count()},
			"websocket": map[string]interface{}{"status": "healthy", "clients": s.hub.Count()},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}

// render buffers c so a failed render still produces a clean error page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		s.writeError(w, r, errors.Wrap(err, errors.ErrorTypeInternal, errors.ErrCodeInternalError, "render failed"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// statusFor maps error categories onto HTTP status codes.
func statusFor(err error) int {
	var de *errors.DocError
	if !stderrors.As(err, &de) {
		return http.StatusInternalServerError
	}

	switch de.Type {
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.errors.Handle(r.Context(), err)

	status := statusFor(err)
	message := http.StatusText(status)
	if status < http.StatusInternalServerError {
		message = err.Error()
	}
	http.Error(w, message, status)
}
