package api

import (
	"net/http"

	"github.com/squarefactory/slurm-api/scheduler"
)

// Sacct queries job accounting records, optionally bounded by job ID, user
// and a time window.
func (h *Handler) Sacct(w http.ResponseWriter, r *http.Request) {
	var p AcctParams
	if err := decodeParams(r, &p); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !h.ensureConnected(w, r) {
		return
	}

	res, err := h.slurm.Sacct(r.Context(), &scheduler.AcctRequest{
		JobID:     p.JobID,
		User:      p.User,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Format:    p.Format,
	})
	if err != nil {
		h.execError(w, r, err)
		return
	}

	h.renderResult(w, r, res)
}
