// Package httpapi exposes prepared namespaces and field values over HTTP.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	forms "github.com/reglet-dev/reglet-forms"
	"github.com/reglet-dev/reglet-forms/entities"
)

// Server serves one Forms instance. Requests are serialized because the
// registry is not safe for concurrent use.
type Server struct {
	forms   *forms.Forms
	logger  *slog.Logger
	maxBody int64
	mu      sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxBodyBytes bounds the size of field value request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// NewServer creates a Server over f.
func NewServer(f *forms.Forms, opts ...Option) *Server {
	s := &Server{forms: f, logger: slog.Default(), maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns a router with every route mounted at the root.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the API routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/namespaces/{objectType}/{subtype}", func(r chi.Router) {
		r.Get("/", s.export)
		r.Get("/containers/{id}", s.render)
		r.Get("/fields/{id}", s.getField)
		r.Put("/fields/{id}", s.putField)
	})
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(forms.WithRequestID(r.Context(), id)))
	})
}

type namespaceParams struct {
	objectType string
	subtype    string
	id         string
	item       string
}

func params(r *http.Request) namespaceParams {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		id = chi.URLParam(r, "id")
	}
	return namespaceParams{
		objectType: chi.URLParam(r, "objectType"),
		subtype:    chi.URLParam(r, "subtype"),
		id:         id,
		item:       r.URL.Query().Get("item"),
	}
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	p := params(r)
	s.mu.Lock()
	payload, err := s.forms.Export(r.Context(), p.objectType, p.subtype, p.item)
	s.mu.Unlock()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	p := params(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.forms.Prepare(p.objectType, p.subtype)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	container, ok := c.Container(p.id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "container not prepared: "+p.id)
		return
	}
	html, err := s.forms.Renderer().RenderString(r.Context(), container, renderContext(p.item))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

type fieldValue struct {
	ID    string `json:"id"`
	Item  string `json:"item,omitempty"`
	Value any    `json:"value"`
	Saved *bool  `json:"saved,omitempty"`
}

func (s *Server) getField(w http.ResponseWriter, r *http.Request) {
	p := params(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.forms.IsPrepared(p.objectType, entities.KindField, p.id, p.subtype) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "field not available: "+p.id)
		return
	}
	v, err := s.forms.Value(r.Context(), p.objectType, p.id, p.subtype, p.item)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fieldValue{ID: p.id, Item: p.item, Value: v})
}

func (s *Server) putField(w http.ResponseWriter, r *http.Request) {
	p := params(r)
	var body struct {
		Value any `json:"value"`
	}
	if err := decodeJSON(r, s.maxBody, &body); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.forms.IsPrepared(p.objectType, entities.KindField, p.id, p.subtype) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "field not available: "+p.id)
		return
	}
	saved, err := s.forms.Save(r.Context(), p.objectType, p.id, p.subtype, body.Value, p.item)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	status := http.StatusOK
	if !saved {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, fieldValue{ID: p.id, Item: p.item, Value: body.Value, Saved: &saved})
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrNotFound), errors.Is(err, forms.ErrNotPrepared):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, entities.ErrMissingObjectType), errors.Is(err, entities.ErrInvalidDeclaration):
		writeError(w, http.StatusBadRequest, "INVALID_NAMESPACE", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
