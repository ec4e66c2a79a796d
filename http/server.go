package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before the server is closed.
const ShutdownTimeout = 10 * time.Second

// MaxBodyPreview is the number of characters of a document body returned
// in listings and search results.
const MaxBodyPreview = 100

// AssetsPath is the mount point of the asset root.
const AssetsPath = "/assets/"

// RouteURL returns the server path of the cached page stored at route.
func RouteURL(route string) string {
	return AssetsPath + strings.TrimPrefix(route, "/")
}

// Server serves the JSON API and the cached pages under /assets/.
type Server struct {
	ln     net.Listener
	server *http.Server
	mux    *http.ServeMux

	// Addr is the bind address. Set before calling Open.
	Addr string

	// AssetsDir is served under /assets/ when not empty.
	AssetsDir string

	// MetricsHandler is served under /metrics when not nil.
	MetricsHandler http.Handler

	Logger *slog.Logger

	AcquisitionService docsearch.AcquisitionService
	SearchService      docsearch.SearchService
	DocumentService    docsearch.DocumentService
}

// NewServer returns a server with routes registered. Services must be set
// before it handles requests.
func NewServer() *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		Logger: slog.New(slog.DiscardHandler),
	}
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.mux.HandleFunc("POST /download", s.handleAcquire)
	s.mux.HandleFunc("POST /download/preview", s.handlePreview)
	s.mux.HandleFunc("DELETE /download/delete/{docName}", s.handleDelete)
	s.mux.HandleFunc("GET /search/{query}", s.handleSearch)
	s.mux.HandleFunc("GET /search/{query}/{page}", s.handleSearch)
	s.mux.HandleFunc("GET /search/{query}/{page}/{amount}", s.handleSearch)
	s.mux.HandleFunc("GET /search/{query}/{page}/{amount}/{tags}", s.handleSearch)
	s.mux.HandleFunc("GET /document", s.handleDocumentList)
	s.mux.HandleFunc("GET /document/{docName}", s.handleDocument)
	s.mux.HandleFunc("GET /refresh", s.handleRefresh)
	s.mux.HandleFunc("GET "+AssetsPath, s.handleAssets)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)
	return s
}

// ServeHTTP dispatches to the registered routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Open starts listening on Addr and serves in a separate goroutine.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("server stopped", "err", err)
		}
	}()
	return nil
}

// URL returns the base URL of the listening server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	var req docsearch.AcquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, docsearch.Errorf(docsearch.EINVALID, "invalid JSON body"))
		return
	}

	a, err := s.AcquisitionService.Acquire(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req docsearch.AcquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, docsearch.Errorf(docsearch.EINVALID, "invalid JSON body"))
		return
	}

	a, err := s.AcquisitionService.Preview(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	outcomes, err := s.AcquisitionService.Delete(r.Context(), r.PathValue("docName"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := &docsearch.Query{
		Query:  r.PathValue("query"),
		Locale: r.URL.Query().Get("locale"),
	}
	var err error
	if v := r.PathValue("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil {
			s.writeError(w, r, docsearch.Errorf(docsearch.EINVALID, "invalid page %q", v))
			return
		}
	}
	if v := r.PathValue("amount"); v != "" {
		if q.PageSize, err = strconv.Atoi(v); err != nil {
			s.writeError(w, r, docsearch.Errorf(docsearch.EINVALID, "invalid amount %q", v))
			return
		}
	}
	if v := r.PathValue("tags"); v != "" {
		q.Tags = strings.Split(v, "-")
	}

	res, err := s.SearchService.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	hits := make([]*docsearch.IndexEntry, 0, len(res.Hits))
	for _, h := range res.Hits {
		cp := *h
		cp.IndexedBody = truncate(cp.IndexedBody, MaxBodyPreview)
		hits = append(hits, &cp)
	}
	out := *res
	out.Hits = hits
	writeJSON(w, http.StatusOK, &out)
}

// documentResponse adds the public URL of the cached page to a record.
type documentResponse struct {
	*docsearch.Document
	RouteURL string `json:"routeUrl"`
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("docName")
	doc, err := s.DocumentService.FindDocumentByName(r.Context(), name)
	if docsearch.ErrorCode(err) == docsearch.ENOTFOUND {
		writeJSON(w, http.StatusOK, map[string]string{"message": "document " + name + " not found"})
		return
	} else if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Document: doc, RouteURL: RouteURL(doc.Route)})
}

func (s *Server) handleDocumentList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.DocumentService.FindDocuments(r.Context(), docsearch.DocumentFilter{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, doc := range docs {
		doc.IndexedBody = truncate(doc.IndexedBody, MaxBodyPreview)
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.SearchService.Regenerate(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "index regenerated"})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	if s.AssetsDir == "" {
		http.NotFound(w, r)
		return
	}
	http.StripPrefix(AssetsPath, http.FileServer(http.Dir(s.AssetsDir))).ServeHTTP(w, r)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.MetricsHandler == nil {
		http.NotFound(w, r)
		return
	}
	s.MetricsHandler.ServeHTTP(w, r)
}

// ErrorStatus maps an application error code to an HTTP status.
func ErrorStatus(code string) int {
	switch code {
	case docsearch.EINVALID:
		return http.StatusBadRequest
	case docsearch.ENOTFOUND:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as {"message": ...}. Internal errors are logged and
// their details hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := docsearch.ErrorCode(err)
	if code == docsearch.EINTERNAL {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, ErrorStatus(code), map[string]string{"message": docsearch.ErrorMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
