package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/squarefactory/slurm-api/logger"
)

// Health checks that the scheduler answers a queue query over the session.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if !h.ensureConnected(w, r) {
		return
	}

	if err := h.slurm.HealthCheck(ctx); err != nil {
		h.log.Error("health failed", logger.Error(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Response{Status: StatusError, Error: err.Error()})
		return
	}

	render.JSON(w, r, Response{Status: StatusSuccess, Data: "ok"})
}
