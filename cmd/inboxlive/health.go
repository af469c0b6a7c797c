package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/inbox-dashboard/internal/connection"
	"github.com/rickgao/inbox-dashboard/internal/router"
	"github.com/rickgao/inbox-dashboard/internal/version"
)

type healthResponse struct {
	Status    string                  `json:"status"`
	Version   version.Info            `json:"version"`
	Realtime  connection.ManagerStats `json:"realtime"`
	Heartbeat heartbeatBody           `json:"heartbeat"`
	Router    router.Stats            `json:"router"`
}

type heartbeatBody struct {
	LastPingSentAt *time.Time `json:"last_ping_sent_at,omitempty"`
	AwaitingPong   bool       `json:"awaiting_pong"`
}

// newHealthHandler reports connectivity. The status is "healthy" while the
// socket is open and "degraded" otherwise, answered with 503.
func newHealthHandler(path string, mgr *connection.Manager, rt *router.Router) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
		hb := mgr.Heartbeat()
		resp := healthResponse{
			Status:   "healthy",
			Version:  version.Get(),
			Realtime: mgr.Stats(),
			Heartbeat: heartbeatBody{
				AwaitingPong: hb.AwaitingPong,
			},
			Router: rt.Stats(),
		}
		if !hb.LastPingSentAt.IsZero() {
			t := hb.LastPingSentAt
			resp.Heartbeat.LastPingSentAt = &t
		}

		w.Header().Set("Content-Type", "application/json")
		if !resp.Realtime.Connected {
			resp.Status = "degraded"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	})

	return mux
}
