package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/juanalonso3/webwatch/internal/dispatch"
	"github.com/juanalonso3/webwatch/internal/httpapi/middleware"
	"github.com/juanalonso3/webwatch/internal/repo"
	"github.com/juanalonso3/webwatch/internal/stats"
)

// Limits groups the per-class rate limit knobs for the router.
type Limits struct {
	PublicRPM   int
	PublicBurst int
	AdminRPM    int
	AdminBurst  int
}

// Server exposes the latest batch over HTTP and can run a batch on demand.
// The target list is fixed at startup; this API reads state, it does not
// manage targets.
type Server struct {
	Logger  *zap.Logger
	Store   repo.SnapshotStore
	Pool    *dispatch.Pool
	Targets []string
}

func NewServer(l *zap.Logger, store repo.SnapshotStore, pool *dispatch.Pool, targets []string) *Server {
	return &Server{Logger: l, Store: store, Pool: pool, Targets: targets}
}

// Router wires the routes with CORS, API-key auth and per-class rate limits.
func (s *Server) Router(keys middleware.Keys, allowedOrigins []string, lim Limits) http.Handler {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(lim.PublicRPM, lim.PublicBurst))
		r.Use(middleware.RequireAny(keys))
		r.Get("/api/targets", s.handleTargets)
		r.Get("/api/results/latest", s.handleLatest)
		r.Get("/api/summary", s.handleSummary)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(lim.AdminRPM, lim.AdminBurst))
		r.Use(middleware.RequireAdmin(keys))
		r.Post("/api/check", s.handleCheck)
	})

	return r
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"targets": s.Targets})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latestSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latestSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"timestamp_utc": snap.TimestampUTC,
		"run_at":        snap.RunAt,
		"summary":       snap.Summary,
	})
}

// handleCheck runs the whole target list synchronously and responds with the
// fresh snapshot once it is stored.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	results := s.Pool.CheckAll(r.Context(), s.Targets)
	sum := stats.Compute(results)
	snap := repo.NewSnapshot(results, sum)

	if err := s.Store.Save(r.Context(), snap); err != nil {
		s.Logger.Warn("snapshot_save_failed", zap.Error(err))
	}

	s.Logger.Info("on_demand_check",
		zap.Int("targets", sum.Total),
		zap.Int("successes", sum.Successes),
		zap.Int("http_errors", sum.HTTPErrors),
		zap.Int("transport_errors", sum.TransportErrors),
		zap.Float64("uptime_pct", sum.UptimePct),
	)
	writeJSON(w, snap)
}

func (s *Server) latestSnapshot(w http.ResponseWriter, r *http.Request) (*repo.Snapshot, bool) {
	snap, err := s.Store.Latest(r.Context())
	if err != nil {
		s.Logger.Warn("snapshot_load_failed", zap.Error(err))
		http.Error(w, "snapshot unavailable", http.StatusInternalServerError)
		return nil, false
	}
	if snap == nil {
		http.Error(w, "no completed batch yet", http.StatusNotFound)
		return nil, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
