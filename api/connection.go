package api

import (
	"net/http"

	"github.com/go-chi/render"
)

// connection probe, cheap and side-effect free
const probeCommand = "echo 'connection test'"

// Connection reports whether the SSH session is live. A session only counts
// as connected when a probe command still succeeds over it.
func (h *Handler) Connection(w http.ResponseWriter, r *http.Request) {
	status := ConnectionStatus{
		Status: "disconnected",
		Host:   h.cfg.Host,
		User:   h.cfg.User,
		Port:   h.cfg.Port,
	}

	if h.session.Connected() {
		if _, _, exitCode, err := h.session.Exec(r.Context(), probeCommand); err == nil && exitCode == 0 {
			status.Status = "connected"
		}
	}

	render.JSON(w, r, status)
}

// Disconnect tears down the SSH session. Idempotent: disconnecting an already
// closed session succeeds.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Disconnect(); err != nil {
		h.execError(w, r, err)
		return
	}

	render.JSON(w, r, Response{
		Status: StatusSuccess,
		Data:   "Disconnected from SLURM cluster",
	})
}
