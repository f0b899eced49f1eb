package api

import (
	"net/http"

	"github.com/squarefactory/slurm-api/scheduler"
)

// ShowNode reports detailed scontrol information about one node, or about
// every node when no node name is supplied.
func (h *Handler) ShowNode(w http.ResponseWriter, r *http.Request) {
	var p NodeParams
	if err := decodeParams(r, &p); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !h.ensureConnected(w, r) {
		return
	}

	res, err := h.slurm.ShowNode(r.Context(), &scheduler.NodeDetailRequest{NodeName: p.Node})
	if err != nil {
		h.execError(w, r, err)
		return
	}

	h.renderResult(w, r, res)
}
