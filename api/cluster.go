package api

import (
	"net/http"

	"github.com/squarefactory/slurm-api/scheduler"
)

// Sinfo reports partition and node status, optionally filtered by partition
// or node list.
func (h *Handler) Sinfo(w http.ResponseWriter, r *http.Request) {
	var p ClusterParams
	if err := decodeParams(r, &p); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !h.ensureConnected(w, r) {
		return
	}

	res, err := h.slurm.Sinfo(r.Context(), &scheduler.ClusterRequest{
		Partition: p.Partition,
		Format:    p.Format,
		Nodes:     p.Nodes,
	})
	if err != nil {
		h.execError(w, r, err)
		return
	}

	h.renderResult(w, r, res)
}
