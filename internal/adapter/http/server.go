package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
	"github.com/couchcryptid/zip-dispatch/internal/lookup"
)

// maxUploadBytes caps the body of a scheme upload.
const maxUploadBytes = 16 << 20

// Lookups is the read side of the dispatch index.
type Lookups interface {
	Lookup(query string) (lookup.Result, bool)
	BinRanges(input string) (string, []domain.IntervalRecord, bool)
	Current() (domain.CompiledScheme, bool)
	Sites() domain.SiteTable
}

// SchemeLoader accepts freshly compiled schemes, e.g. the lookup service or a
// fan-out that also publishes them.
type SchemeLoader interface {
	LoadBatch(ctx context.Context, schemes []domain.CompiledScheme) error
}

// Server exposes the lookup API alongside health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	lookups    Lookups
	loader     SchemeLoader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /v1 lookup routes plus /healthz,
// /readyz, and /metrics.
func NewServer(addr string, ready sharedobs.ReadinessChecker, lookups Lookups, loader SchemeLoader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		lookups: lookups,
		loader:  loader,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/lookup", s.handleLookup)
	mux.HandleFunc("GET /v1/bins", s.handleBins)
	mux.HandleFunc("GET /v1/scheme", s.handleScheme)
	mux.HandleFunc("GET /v1/version", s.handleVersion)
	mux.HandleFunc("POST /v1/scheme", s.handleUpload)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type lookupResponse struct {
	Match        bool                   `json:"match"`
	Record       *domain.IntervalRecord `json:"record,omitempty"`
	Site         string                 `json:"site,omitempty"`
	SiteClass    string                 `json:"site_class,omitempty"`
	MachineLabel string                 `json:"machine_label,omitempty"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookups.Lookup(r.URL.Query().Get("zip"))
	if !ok {
		writeJSON(w, http.StatusOK, lookupResponse{Match: false})
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{
		Match:        true,
		Record:       &res.Record,
		Site:         res.Site,
		SiteClass:    res.SiteClass,
		MachineLabel: res.MachineLabel,
	})
}

type binsResponse struct {
	Bin  string                  `json:"bin"`
	Site string                  `json:"site,omitempty"`
	Rows []domain.IntervalRecord `json:"rows"`
}

func (s *Server) handleBins(w http.ResponseWriter, r *http.Request) {
	bin, rows, ok := s.lookups.BinRanges(r.URL.Query().Get("q"))
	if !ok {
		writeError(w, http.StatusBadRequest, "query must contain digits")
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "no ranges for bin "+bin)
		return
	}
	writeJSON(w, http.StatusOK, binsResponse{
		Bin:  bin,
		Site: s.lookups.Sites().Label(bin),
		Rows: rows,
	})
}

func (s *Server) handleScheme(w http.ResponseWriter, _ *http.Request) {
	scheme, ok := s.lookups.Current()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no scheme installed")
		return
	}
	table, err := domain.EncodeTable(scheme.Records)
	if err != nil {
		s.logger.Error("encode table failed", "error", err, "scheme", scheme.Name)
		writeError(w, http.StatusInternalServerError, "encode table failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(table) //nolint:errcheck // client may have gone away
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	scheme, ok := s.lookups.Current()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no scheme installed")
		return
	}
	writeJSON(w, http.StatusOK, scheme.Manifest)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "scheme exceeds upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}

	scheme, err := domain.CompileScheme(name, string(body))
	if err != nil {
		if errors.Is(err, domain.ErrNoRecords) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.loader.LoadBatch(r.Context(), []domain.CompiledScheme{scheme}); err != nil {
		s.logger.Error("scheme upload load failed", "error", err, "scheme", name)
		writeError(w, http.StatusInternalServerError, "load scheme failed")
		return
	}

	s.logger.Info("scheme uploaded", "scheme", name, "rows", scheme.Manifest.Rows)
	writeJSON(w, http.StatusCreated, scheme.Manifest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
