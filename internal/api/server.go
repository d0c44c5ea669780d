package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/analysis"
	"github.com/pbaille/journal/internal/classifier"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/embedding"
	"github.com/pbaille/journal/internal/store"
)

const maxBodyBytes = 1 << 20

// Server handles HTTP requests for the journal API
type Server struct {
	store      *store.Store
	embedder   embedding.Embedder
	classifier *classifier.Classifier
	logger     *zap.Logger
	metrics    *metrics
	addr       string
}

// Option configures a Server.
type Option func(*Server)

// WithEmbedder sets the embedder used for similarity search. Defaults to the
// local embedder.
func WithEmbedder(e embedding.Embedder) Option {
	return func(s *Server) { s.embedder = e }
}

// WithClassifier enables automatic model tagging of new entries.
func WithClassifier(c *classifier.Classifier) Option {
	return func(s *Server) { s.classifier = c }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new API server
func New(st *store.Store, addr string, opts ...Option) *Server {
	s := &Server{
		store:    st,
		embedder: embedding.Local{},
		logger:   zap.NewNop(),
		metrics:  newMetrics(),
		addr:     addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Entries
	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("POST /entries", s.addEntry)
	mux.HandleFunc("GET /entries/{id}", s.getEntry)
	mux.HandleFunc("GET /entries/{id}/similar", s.similarEntries)

	// Tags
	mux.HandleFunc("GET /tags", s.listTags)

	// Search
	mux.HandleFunc("GET /search", s.searchEntries)

	// Analysis
	mux.HandleFunc("GET /analysis", s.analyzeStored)
	mux.HandleFunc("POST /analysis", s.analyzePosted)

	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	return s.withLogging(withCORS(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AddEntryRequest is the request body for adding an entry
type AddEntryRequest struct {
	store.NewEntry
	NoClassify bool `json:"no_classify,omitempty"`
}

// AddEntryResponse is the response for adding an entry
type AddEntryResponse struct {
	Entry   *domain.Entry        `json:"entry"`
	Similar []store.SimilarEntry `json:"similar,omitempty"`
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.TranscriptRaw) == "" {
		req.TranscriptRaw = req.TranscriptUser
	}
	if strings.TrimSpace(req.TranscriptRaw) == "" {
		writeError(w, http.StatusBadRequest, "transcript_raw is required")
		return
	}

	entry, err := s.store.AddEntry(req.NewEntry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.classifier != nil && !req.NoClassify {
		s.classify(r.Context(), entry)
	}

	resp := AddEntryResponse{Entry: entry}

	// Find similar before saving so the entry does not match itself
	if vector, err := s.embedder.Embed(r.Context(), entry.TranscriptUser); err != nil {
		s.logger.Warn("embedding skipped", zap.String("entry_id", entry.ID), zap.Error(err))
	} else {
		similar, err := s.store.FindSimilar(vector, 5, entry.ID)
		if err != nil {
			s.logger.Warn("similarity search failed", zap.Error(err))
		}
		resp.Similar = similar

		if err := s.store.SaveEmbedding(entry.ID, vector, s.embedder.Model()); err != nil {
			s.logger.Warn("save embedding failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
		entry.Embedding = vector
	}

	writeJSON(w, http.StatusCreated, resp)
}

// classify stores model tags for entry. Failures are logged and leave the entry untagged.
func (s *Server) classify(ctx context.Context, entry *domain.Entry) {
	all, err := s.store.AllEntries()
	if err != nil {
		s.logger.Warn("classification skipped", zap.Error(err))
		return
	}

	result, err := s.classifier.Classify(ctx, entry.TranscriptUser, knownTags(all))
	if err != nil {
		s.logger.Warn("classification failed", zap.String("entry_id", entry.ID), zap.Error(err))
		return
	}

	var category *string
	if result.Category != "" {
		category = &result.Category
	}
	if err := s.store.SetModelTags(entry.ID, result.Tags, category); err != nil {
		s.logger.Warn("save model tags failed", zap.String("entry_id", entry.ID), zap.Error(err))
		return
	}

	entry.TagsModel = result.Tags
	if category != nil {
		entry.Category = category
	}
}

// knownTags lists the distinct tags of entries, sorted.
func knownTags(entries []domain.Entry) []string {
	freq := analysis.CountTags(entries)
	tags := make([]string, 0, len(freq))
	for tag := range freq {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (s *Server) resolveEntry(w http.ResponseWriter, id string) (*domain.Entry, bool) {
	fullID, err := s.store.ResolveID(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "entry not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	entry, err := s.store.GetEntry(fullID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return entry, true
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.resolveEntry(w, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) similarEntries(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.resolveEntry(w, r.PathValue("id"))
	if !ok {
		return
	}

	k := queryInt(r, "k", 5, 1)

	vector := entry.Embedding
	if len(vector) == 0 {
		var err error
		vector, err = s.embedder.Embed(r.Context(), entry.TranscriptUser)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		if err := s.store.SaveEmbedding(entry.ID, vector, s.embedder.Model()); err != nil {
			s.logger.Warn("save embedding failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}

	similar, err := s.store.FindSimilar(vector, k, entry.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entry_id": entry.ID,
		"similar":  nonNil(similar),
	})
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20, 1)
	offset := queryInt(r, "offset", 0, 0)

	entries, err := s.store.ListEntries(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": nonNil(entries),
		"limit":   limit,
		"offset":  offset,
	})
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.AllEntries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tags": analysis.CountTags(entries),
	})
}

func (s *Server) searchEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	entries, err := s.store.SearchEntries(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": nonNil(entries),
		"query":   query,
	})
}

func (s *Server) analyzeStored(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.AllEntries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := analysis.ProcessEntries(entries)
	s.metrics.observeResult(len(entries), result)
	writeJSON(w, http.StatusOK, result)
}

// analyzePosted runs the analysis on entries sent in the body without storing them.
func (s *Server) analyzePosted(w http.ResponseWriter, r *http.Request) {
	var entries []domain.Entry
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON array of entries")
		return
	}

	result := analysis.ProcessEntries(entries)
	s.metrics.observeResult(len(entries), result)
	writeJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, name string, def, floor int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= floor {
			return n
		}
	}
	return def
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
