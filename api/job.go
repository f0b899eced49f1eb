package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/squarefactory/slurm-api/scheduler"
)

// ShowJob reports detailed scontrol information about a single job.
func (h *Handler) ShowJob(w http.ResponseWriter, r *http.Request) {
	var p JobParams
	if err := decodeParams(r, &p); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if p.JobID == "" {
		h.badRequest(w, r, scheduler.ErrMissingJobID)
		return
	}

	if !h.ensureConnected(w, r) {
		return
	}

	res, err := h.slurm.ShowJob(r.Context(), &scheduler.JobDetailRequest{JobID: p.JobID})
	if err != nil {
		h.execError(w, r, err)
		return
	}

	h.renderResult(w, r, res)
}

// Cancel kills a job by ID.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var p JobParams
	if err := decodeParams(r, &p); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if p.JobID == "" {
		h.badRequest(w, r, scheduler.ErrMissingJobID)
		return
	}

	if !h.ensureConnected(w, r) {
		return
	}

	res, err := h.slurm.Cancel(r.Context(), &scheduler.CancelRequest{JobID: p.JobID})
	if err != nil {
		h.execError(w, r, err)
		return
	}
	if !res.Success {
		h.renderResult(w, r, res)
		return
	}

	render.JSON(w, r, Response{
		Status:  StatusSuccess,
		Data:    fmt.Sprintf("Job %s cancelled successfully", p.JobID),
		Command: res.Command,
	})
}
