package api

import (
	"net/http"

	"github.com/squarefactory/slurm-api/scheduler"
)

// Squeue lists running and pending jobs, optionally filtered by user, job ID
// or partition.
func (h *Handler) Squeue(w http.ResponseWriter, r *http.Request) {
	var p QueueParams
	if err := decodeParams(r, &p); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !h.ensureConnected(w, r) {
		return
	}

	res, err := h.slurm.Squeue(r.Context(), &scheduler.QueueRequest{
		User:      p.User,
		JobID:     p.JobID,
		Partition: p.Partition,
		Format:    p.Format,
	})
	if err != nil {
		h.execError(w, r, err)
		return
	}

	h.renderResult(w, r, res)
}
