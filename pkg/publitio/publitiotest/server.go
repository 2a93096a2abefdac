// Package publitiotest provides an in-process fake of the Publitio API for
// tests. It verifies request signatures the way the real API does and records
// every request it receives.
package publitiotest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/publitio-go/pkg/publitio"
)

// Request is a recorded request as seen by the fake server.
type Request struct {
	Method string
	Path   string // relative to /v1
	Query  publitio.Params

	// Upload details, set for multipart requests
	FileParts int
	FileName  string
	FileSize  int64
}

// Server is a fake Publitio API listening on a local httptest server.
type Server struct {
	*httptest.Server

	key    string
	secret string

	mu       sync.Mutex
	requests []Request
	routes   map[string]http.HandlerFunc
}

// NewServer starts a fake API accepting the given credentials. Call Close when done.
func NewServer(key, secret string) *Server {
	s := &Server{
		key:    key,
		secret: secret,
		routes: make(map[string]http.HandlerFunc),
	}

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/files/create", s.upload)
		r.Post("/watermarks/create", s.upload)
		r.HandleFunc("/*", s.serveRoute)
	})
	r.NotFound(notFound)

	s.Server = httptest.NewServer(r)
	return s
}

// Handle registers a JSON reply for method and path, e.g. Handle("GET", "/files/list", body).
func (s *Server) Handle(method, path string, body any) {
	s.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, body)
	})
}

// HandleRaw registers a verbatim reply, useful for malformed bodies.
func (s *Server) HandleRaw(method, path string, status int, contentType, body string) {
	s.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

// HandleFunc registers a custom handler for method and path.
func (s *Server) HandleFunc(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[routeKey(method, path)] = h
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// BaseURL is the v1 base URL to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + "/v1"
}

// Client creates a publitio.Client pointed at the fake server.
func (s *Server) Client(opts ...publitio.Option) (*publitio.Client, error) {
	base := []publitio.Option{
		publitio.WithBaseURL(s.BaseURL()),
		publitio.WithHTTPClient(s.Server.Client()),
	}
	return publitio.New(s.key, s.secret, append(base, opts...)...)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query, err := publitio.ParseParams(r.URL.RawQuery)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.record(Request{
			Method: r.Method,
			Path:   chi.RouteContext(r.Context()).RoutePath,
			Query:  query,
		})

		if err := s.verify(query); err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// verify checks that the four auth parameters close the query string, in
// order, and carry a valid signature.
func (s *Server) verify(query publitio.Params) error {
	if len(query) < 4 {
		return errors.New("missing authentication parameters")
	}
	auth := query[len(query)-4:]
	want := []string{
		publitio.ParamAPIKey,
		publitio.ParamAPITimestamp,
		publitio.ParamAPINonce,
		publitio.ParamAPISignature,
	}
	for i, p := range auth {
		if p.Key != want[i] {
			return fmt.Errorf("expected %s at position %d, got %s", want[i], len(query)-4+i, p.Key)
		}
	}
	if auth[0].Value != s.key {
		return errors.New("invalid api key")
	}
	if !publitio.ValidNonce(auth[2].Value) {
		return fmt.Errorf("invalid nonce %q", auth[2].Value)
	}
	if publitio.Signature(auth[1].Value, auth[2].Value, s.secret) != auth[3].Value {
		return errors.New("invalid signature")
	}
	return nil
}

func (s *Server) serveRoute(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	h, ok := s.routes[routeKey(r.Method, chi.RouteContext(r.Context()).RoutePath)]
	s.mu.Unlock()
	if !ok {
		notFound(w, r)
		return
	}
	h(w, r)
}

// upload reads the multipart body and reports what it received.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var parts int
	var name string
	var size int64
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		parts++
		if part.FormName() == publitio.UploadField {
			name = part.FileName()
			n, err := io.Copy(io.Discard, part)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			size += n
		}
		part.Close()
	}

	path := chi.RouteContext(r.Context()).RoutePath
	s.mu.Lock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Method == r.Method && s.requests[i].Path == path {
			s.requests[i].FileParts = parts
			s.requests[i].FileName = name
			s.requests[i].FileSize = size
			break
		}
	}
	h, ok := s.routes[routeKey(r.Method, path)]
	s.mu.Unlock()

	if ok {
		h(w, r)
		return
	}
	if size == 0 && name == "" {
		writeError(w, r, http.StatusBadRequest, "missing file part")
		return
	}
	render.JSON(w, r, map[string]any{
		"success": true,
		"code":    http.StatusCreated,
		"id":      uuid.NewString(),
		"size":    size,
		"parts":   parts,
	})
}

func (s *Server) record(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":    status,
			"message": message,
		},
	})
}

// notFound mimics the HTML page returned for unknown endpoints.
func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.HTML(w, r, "<!DOCTYPE html><html><body><h1>404 Not Found</h1></body></html>")
}

func routeKey(method, path string) string {
	return method + " " + path
}
