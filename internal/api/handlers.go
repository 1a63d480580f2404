// Package api provides the read-only HTTP surface of WHM.
//
// @title WHM API
// @version 1.0
// @description Host telemetry reports and recorded chart tables.
// @BasePath /
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/darshan-rambhia/whm/internal/cache"
	"github.com/darshan-rambhia/whm/internal/chart"
	"github.com/darshan-rambhia/whm/internal/model"
	"github.com/darshan-rambhia/whm/internal/store"
	"github.com/darshan-rambhia/whm/templates"

	_ "github.com/darshan-rambhia/whm/docs/swagger"
)

// ReportActor is the actor recorded on reports requested over HTTP.
const ReportActor = "api"

// Reporter produces snapshots; *collector.Collector satisfies it.
type Reporter interface {
	Collect(ctx context.Context, full bool, actor string) model.Snapshot
}

// Server is the HTTP server for WHM.
type Server struct {
	reporter Reporter
	cache    *cache.Cache
	store    *store.Store
	logger   *slog.Logger
	now      func() time.Time
	mux      *http.ServeMux
	server   *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(addr string, rep Reporter, c *cache.Cache, s *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		reporter: rep,
		cache:    c,
		store:    s,
		logger:   logger.With("component", "api"),
		now:      time.Now,
		mux:      http.NewServeMux(),
	}

	srv.registerRoutes()

	srv.server = &http.Server{
		Addr:         addr,
		Handler:      SecurityHeadersMiddleware(RecoveryMiddleware(srv.logger, LoggingMiddleware(srv.logger, srv.mux))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // full reports run smartctl per disk
		IdleTimeout:  60 * time.Second,
	}

	return srv
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("HTTP server starting", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	// Full page
	s.mux.HandleFunc("GET /", s.handleIndex)
	s.mux.HandleFunc("GET /charts/{table}", s.handleChartPage)

	// API endpoints (JSON)
	s.mux.HandleFunc("GET /api/report", s.handleReport)
	s.mux.HandleFunc("GET /api/charts", s.handleChartList)
	s.mux.HandleFunc("GET /api/charts/{table}", s.handleChartRows)
	s.mux.HandleFunc("GET /api/charts/{table}/columns", s.handleChartColumns)

	// Health check
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Swagger UI
	s.mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

// renderHTML renders a templ component to a buffer first, then writes the
// buffer to the response, so rendering errors become a proper 500.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		s.logger.Error("rendering component", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnected after headers sent.
		s.logger.Debug("writing HTML response", "path", r.URL.Path, "error", err)
	}
}

// writeJSON marshals v into a buffer first so marshalling errors become a
// proper 500.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encoding JSON response", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("writing JSON response", "path", r.URL.Path, "error", err)
	}
}

// storeError maps a store error onto a response.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrTableNotFound) {
		http.Error(w, "Chart table not found", http.StatusNotFound)
		return
	}
	s.logger.Error("querying store", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// parseSince reads the since query parameter as unix seconds or RFC 3339.
// An absent parameter yields the zero time.
func parseSince(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("since")
	if v == "" {
		return time.Time{}, nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		if n < 0 {
			return time.Time{}, fmt.Errorf("since must not be negative")
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("since must be unix seconds or RFC 3339")
	}
	return t, nil
}

// tableParam returns the table path value, rejecting names no chart table can have.
func tableParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	table := r.PathValue("table")
	if table == "" || store.Sanitize(table) != table {
		http.Error(w, "Chart table not found", http.StatusNotFound)
		return "", false
	}
	return table, true
}

// @Summary Chart index page
// @Description HTML page linking every chart table, grouped by scope
// @Produce html
// @Success 200 {string} string "HTML page"
// @Failure 500 {string} string "Internal Server Error"
// @Router / [get]
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	schemas, err := s.store.Schemas(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	entries := make([]templates.TableEntry, 0, len(schemas))
	for _, ts := range schemas {
		entries = append(entries, templates.TableEntry{
			Table:   ts.Table,
			Group:   ts.Group,
			Scope:   ts.Scope,
			Columns: len(ts.Columns),
		})
	}
	snap := s.cache.Snapshot()
	s.renderHTML(w, r, templates.Index(templates.IndexData{
		Tables:     entries,
		Recordings: snap.Recordings,
		Report:     snap.Report,
		Now:        s.now(),
	}))
}

// @Summary Chart page
// @Description HTML line chart of one chart table
// @Produce html
// @Param table path string true "Chart table name, <group>_<scope>"
// @Param since query string false "Oldest row to include, unix seconds or RFC 3339"
// @Success 200 {string} string "HTML page"
// @Failure 400 {string} string "Invalid since"
// @Failure 404 {string} string "Chart table not found"
// @Router /charts/{table} [get]
func (s *Server) handleChartPage(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	since, err := parseSince(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	series, err := s.store.QueryRows(r.Context(), table, since)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, series); err != nil {
		s.logger.Error("rendering chart", "table", table, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("writing chart response", "table", table, "error", err)
	}
}

// @Summary On-demand report
// @Description Collects a report from the host. A full report adds uptime, kernel, dmesg, network, drives (with SMART) and processes.
// @Produce json
// @Param full query bool false "Collect a full report" default(true)
// @Success 200 {object} model.Snapshot
// @Failure 400 {string} string "Invalid full"
// @Router /api/report [get]
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	full := true
	if v := r.URL.Query().Get("full"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "full must be a boolean", http.StatusBadRequest)
			return
		}
		full = b
	}
	snap := s.reporter.Collect(r.Context(), full, ReportActor)
	if full {
		s.cache.SetReport(snap)
	}
	s.writeJSON(w, r, snap)
}

// chartTable is one entry of GET /api/charts. Group and scope are empty for
// tables the registry does not know yet.
type chartTable struct {
	Table   string      `json:"table"`
	Group   string      `json:"group,omitempty"`
	Scope   model.Scope `json:"scope,omitempty"`
	Columns []string    `json:"columns,omitempty"`
}

// @Summary List chart tables
// @Description Every chart table in the store with its registered group, scope and columns
// @Produce json
// @Success 200 {array} chartTable
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/charts [get]
func (s *Server) handleChartList(w http.ResponseWriter, r *http.Request) {
	tables, err := s.store.ChartTables(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	schemas, err := s.store.Schemas(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	known := make(map[string]store.TableSchema, len(schemas))
	for _, ts := range schemas {
		known[ts.Table] = ts
	}

	out := make([]chartTable, 0, len(tables))
	for _, name := range tables {
		entry := chartTable{Table: name}
		if ts, ok := known[name]; ok {
			entry.Group, entry.Scope, entry.Columns = ts.Group, ts.Scope, ts.Columns
		}
		out = append(out, entry)
	}
	s.writeJSON(w, r, out)
}

// @Summary Chart table rows
// @Description Rows of one chart table, oldest first. Values are null where a sample had no number.
// @Produce json
// @Param table path string true "Chart table name, <group>_<scope>"
// @Param since query string false "Oldest row to include, unix seconds or RFC 3339"
// @Success 200 {object} model.ChartSeries
// @Failure 400 {string} string "Invalid since"
// @Failure 404 {string} string "Chart table not found"
// @Router /api/charts/{table} [get]
func (s *Server) handleChartRows(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	since, err := parseSince(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	series, err := s.store.QueryRows(r.Context(), table, since)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, r, series)
}

// columnsResponse is the response body for GET /api/charts/{table}/columns.
type columnsResponse struct {
	Table string   `json:"table"`
	Keys  []string `json:"keys"`
}

// @Summary Chart table columns
// @Description Metric column names of a chart table in table order, excluding time
// @Produce json
// @Param table path string true "Chart table name, <group>_<scope>"
// @Success 200 {object} columnsResponse
// @Failure 404 {string} string "Chart table not found"
// @Router /api/charts/{table}/columns [get]
func (s *Server) handleChartColumns(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(w, r)
	if !ok {
		return
	}
	cols, err := s.store.TableColumns(r.Context(), table)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, r, columnsResponse{Table: table, Keys: cols})
}

// @Summary Health check
// @Description Returns store health and the time since each scope was last recorded
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status"
// @Failure 503 {object} map[string]interface{} "Store unavailable"
// @Router /healthz [get]
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	snap := s.cache.Snapshot()
	now := s.now()

	status := "ok"
	if len(snap.LastRun) == 0 {
		status = "no_data"
	}
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("store ping failed", "error", err)
		status = "store_unavailable"
		code = http.StatusServiceUnavailable
	}

	scopes := make(map[string]string, len(snap.LastRun))
	for scope, t := range snap.LastRun {
		scopes[string(scope)] = fmt.Sprintf("%ds ago", int(now.Sub(t).Seconds()))
	}
	body := map[string]any{
		"status":    status,
		"timestamp": now.Unix(),
		"scopes":    scopes,
	}
	if code != http.StatusOK {
		data, _ := json.Marshal(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(data) //nolint:errcheck
		return
	}
	s.writeJSON(w, r, body)
}
