package scheduler

import (
	"context"
	"strconv"
)

// Executor runs a command on the cluster head node and returns its trimmed
// stdout, trimmed stderr and exit code. A nonzero exit code is not an error;
// errors indicate transport failures.
type Executor interface {
	Exec(ctx context.Context, cmd string) (stdout, stderr string, exitCode int, err error)
}

// CommandResult is the outcome of a single remote SLURM invocation. Command
// holds the literal command line issued, so callers can diagnose failures.
type CommandResult struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Success  bool
}

// ErrorMessage returns the failure detail for a non-success result: the
// remote stderr when present, otherwise a generic message naming the exit
// code.
func (r *CommandResult) ErrorMessage() string {
	if r.Success {
		return ""
	}
	if r.Stderr != "" {
		return r.Stderr
	}
	return "command exited with code " + strconv.Itoa(r.ExitCode)
}

type QueueRequest struct {
	// User filters jobs by username.
	User string
	// JobID filters by a specific job ID.
	JobID string
	// Partition filters jobs by partition name.
	Partition string
	// Format overrides the default squeue output format.
	Format string
}

type ClusterRequest struct {
	// Partition filters by partition name.
	Partition string
	// Format overrides the default sinfo output format.
	Format string
	// Nodes filters by node names (comma-separated).
	Nodes string
}

type AcctRequest struct {
	// JobID filters by a specific job ID.
	JobID string
	// User filters jobs by username.
	User string
	// StartTime bounds the query (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS).
	StartTime string
	// EndTime bounds the query (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS).
	EndTime string
	// Format overrides the default sacct field list.
	Format string
}

type JobDetailRequest struct {
	// JobID of the job to describe. Required.
	JobID string
}

type NodeDetailRequest struct {
	// NodeName of the node to describe. Empty means all nodes.
	NodeName string
}

type CancelRequest struct {
	// JobID of the job to cancel. Required.
	JobID string
}
