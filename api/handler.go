package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/squarefactory/slurm-api/executor"
	"github.com/squarefactory/slurm-api/logger"
	"github.com/squarefactory/slurm-api/scheduler"
)

// Session is the SSH session handle the handlers operate on. It is satisfied
// by *executor.SSH.
type Session interface {
	Connect() error
	Connected() bool
	Disconnect() error
	Exec(ctx context.Context, cmd string) (stdout, stderr string, exitCode int, err error)
}

// Handler exposes the SLURM operations over HTTP. All operations share one
// session; each ensures the session is connected before executing.
type Handler struct {
	cfg     executor.Config
	session Session
	slurm   *scheduler.Slurm
	log     *logger.Logger
}

func NewHandler(cfg executor.Config, session Session, slurm *scheduler.Slurm) *Handler {
	return &Handler{
		cfg:     cfg,
		session: session,
		slurm:   slurm,
		log:     logger.Get(),
	}
}

// Register mounts every operation endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/squeue", h.Squeue)
	r.Post("/sinfo", h.Sinfo)
	r.Post("/sacct", h.Sacct)
	r.Post("/scontrol/job", h.ShowJob)
	r.Post("/scontrol/node", h.ShowNode)
	r.Post("/scancel", h.Cancel)
	r.Get("/connection", h.Connection)
	r.Post("/disconnect", h.Disconnect)
	r.Get("/health", h.Health)
}

// ensureConnected connects the session if needed. On failure it renders a
// structured error response and returns false.
func (h *Handler) ensureConnected(w http.ResponseWriter, r *http.Request) bool {
	if h.session.Connected() {
		return true
	}
	if err := h.session.Connect(); err != nil {
		h.log.Error("connect failed", logger.Error(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Response{Status: StatusError, Error: err.Error()})
		return false
	}
	return true
}

// decodeParams reads JSON params from the body. An empty body means no
// filters and is not an error.
func decodeParams(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Response{Status: StatusError, Error: err.Error()})
}

func (h *Handler) execError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("operation failed", logger.Error(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, Response{Status: StatusError, Error: err.Error()})
}

// renderResult converts a CommandResult into the response envelope: stdout on
// success, stderr (or a generic message) as the error detail otherwise.
func (h *Handler) renderResult(w http.ResponseWriter, r *http.Request, res *scheduler.CommandResult) {
	if res.Success {
		render.JSON(w, r, Response{
			Status:  StatusSuccess,
			Data:    res.Stdout,
			Command: res.Command,
		})
		return
	}
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, Response{
		Status:  StatusError,
		Error:   res.ErrorMessage(),
		Command: res.Command,
	})
}
