package handlers

import (
	"context"
	"net/http"
	"time"
	"ulascansenturk/kayak-pipeline/internal/metrics"
	"ulascansenturk/kayak-pipeline/internal/objectstore"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type SnapshotLister interface {
	Entries() ([]objectstore.Entry, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// OpsHandler exposes the upload ledger, warehouse health and pipeline counters.
type OpsHandler struct {
	snapshots SnapshotLister
	health    HealthChecker
	metrics   http.Handler
	timeout   time.Duration
}

func NewOpsHandler(snapshots SnapshotLister, health HealthChecker, recorder *metrics.Recorder, timeout time.Duration) *OpsHandler {
	return &OpsHandler{
		snapshots: snapshots,
		health:    health,
		metrics:   promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{}),
		timeout:   timeout,
	}
}

func (h *OpsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/snapshots":
		h.ListSnapshots(w, r)
	case "/healthz":
		h.Health(w, r)
	case "/metrics":
		if r.Method != http.MethodGet {
			respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.metrics.ServeHTTP(w, r)
	default:
		respondWithError(w, http.StatusNotFound, "not found")
	}
}

// ListSnapshots returns the ledger in upload order, optionally narrowed to one
// logical file with ?name=, or to its newest upload with ?latest=true.
func (h *OpsHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	name := query.Get("name")
	latest := query.Get("latest") == "true"
	if latest && name == "" {
		respondWithError(w, http.StatusBadRequest, "parameter 'latest' requires 'name'")
		return
	}

	entries, err := h.snapshots.Entries()
	if err != nil {
		log.Error().Err(err).Msg("failed to read upload ledger")
		respondWithError(w, http.StatusInternalServerError, "failed to read upload ledger: "+err.Error())
		return
	}

	out := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		if name != "" && e.LogicalName != name {
			continue
		}
		snap := Snapshot{Name: e.LogicalName, Key: e.RemoteKey}
		if !e.UploadedAt.IsZero() {
			at := e.UploadedAt
			snap.UploadedAt = &at
		}
		out = append(out, snap)
	}

	if latest {
		if len(out) == 0 {
			respondWithError(w, http.StatusNotFound, "no upload of "+name)
			return
		}
		out = out[len(out)-1:]
	}

	respondWithJSON(w, http.StatusOK, SnapshotsResponse{Snapshots: out})
}

func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("warehouse health check failed")
		respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: err.Error()})
		return
	}

	respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
