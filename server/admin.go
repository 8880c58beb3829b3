package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// FrameRateControl is the part of the loop tunable at runtime.
type FrameRateControl interface {
	TargetFPS() int
	SetTargetFPS(fps int)
}

// Admin serves the debug HTTP surface.
type Admin struct {
	loop    FrameRateControl
	hub     *Hub
	metrics *LoopMetrics
	log     *zap.Logger
}

func NewAdmin(loop FrameRateControl, hub *Hub, metrics *LoopMetrics, log *zap.Logger) *Admin {
	return &Admin{loop: loop, hub: hub, metrics: metrics, log: log}
}

// Handler routes every debug endpoint.
func (a *Admin) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(NewRegistry(a.metrics), promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", a.HandleStats)
	mux.HandleFunc("/admin/config", a.HandleAdminConfig)
	mux.HandleFunc("/ws", a.hub.HandleWS)
	return mux
}

type runtimeConfig struct {
	TargetFPS *int `json:"targetFps,omitempty"`
}

// HandleAdminConfig reads or updates runtime settings.
// GET  /admin/config  returns the current settings
// POST /admin/config  updates the fields present in the JSON body
func (a *Admin) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		fps := a.loop.TargetFPS()
		writeJSON(w, http.StatusOK, runtimeConfig{TargetFPS: &fps})
	case http.MethodPost:
		var body runtimeConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.TargetFPS != nil {
			if *body.TargetFPS <= 0 {
				http.Error(w, "targetFps must be positive", http.StatusBadRequest)
				return
			}
			a.loop.SetTargetFPS(*body.TargetFPS)
			a.log.Info("config updated", zap.Int("targetFps", *body.TargetFPS))
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleStats returns the latest frame statistics and loop counters.
func (a *Admin) HandleStats(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"metrics":  a.metrics.Snapshot(),
		"clients":  a.hub.ClientCount(),
		"rejected": a.hub.Rejected(),
	}
	if s, ok := a.hub.Latest(); ok {
		payload["frame"] = s
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs the debug server on addr until ctx is done.
func (a *Admin) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		a.log.Info("debug server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
