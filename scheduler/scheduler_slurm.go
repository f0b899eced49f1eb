package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/squarefactory/slurm-api/logger"
)

// Default output formats, kept identical to the ones operators are used to
// seeing from the wrapped utilities.
const (
	DefaultQueueFormat   = "%.18i %.9P %.8j %.8u %.2t %.10M %.6D %R"
	DefaultClusterFormat = "%.20P %.5a %.10l %.6D %.6t %.14N"
	DefaultAcctFormat    = "JobID,JobName,Partition,Account,AllocCPUS,State,ExitCode"
)

// ErrMissingJobID is returned by operations that require a job ID when none
// is supplied.
var ErrMissingJobID = errors.New("job id is required")

// Slurm builds SLURM command lines from typed requests and executes them
// through an Executor. Each method issues exactly one remote command.
type Slurm struct {
	executor Executor
	log      *logger.Logger
}

func NewSlurm(executor Executor) *Slurm {
	return &Slurm{
		executor: executor,
		log:      logger.Get(),
	}
}

// Squeue queries the job queue using the squeue command. Flags are emitted in
// a fixed order: format, user, job ID, partition.
func (s *Slurm) Squeue(ctx context.Context, req *QueueRequest) (*CommandResult, error) {
	format := req.Format
	if format == "" {
		format = DefaultQueueFormat
	}

	cmd := []string{"squeue", "-o", quoteFormat(format)}
	if req.User != "" {
		cmd = append(cmd, "-u", shellQuote(req.User))
	}
	if req.JobID != "" {
		cmd = append(cmd, "-j", shellQuote(req.JobID))
	}
	if req.Partition != "" {
		cmd = append(cmd, "-p", shellQuote(req.Partition))
	}

	return s.run(ctx, strings.Join(cmd, " "))
}

// Sinfo queries partition and node status using the sinfo command. Flags are
// emitted in a fixed order: format, partition, nodes.
func (s *Slurm) Sinfo(ctx context.Context, req *ClusterRequest) (*CommandResult, error) {
	format := req.Format
	if format == "" {
		format = DefaultClusterFormat
	}

	cmd := []string{"sinfo", "-o", quoteFormat(format)}
	if req.Partition != "" {
		cmd = append(cmd, "-p", shellQuote(req.Partition))
	}
	if req.Nodes != "" {
		cmd = append(cmd, "-n", shellQuote(req.Nodes))
	}

	return s.run(ctx, strings.Join(cmd, " "))
}

// Sacct queries job accounting using the sacct command. Flags are emitted in
// a fixed order: format, job ID, user, start time, end time.
func (s *Slurm) Sacct(ctx context.Context, req *AcctRequest) (*CommandResult, error) {
	format := req.Format
	if format == "" {
		format = DefaultAcctFormat
	}

	cmd := []string{"sacct", "--format", shellQuote(format)}
	if req.JobID != "" {
		cmd = append(cmd, "-j", shellQuote(req.JobID))
	}
	if req.User != "" {
		cmd = append(cmd, "-u", shellQuote(req.User))
	}
	if req.StartTime != "" {
		cmd = append(cmd, "-S", shellQuote(req.StartTime))
	}
	if req.EndTime != "" {
		cmd = append(cmd, "-E", shellQuote(req.EndTime))
	}

	return s.run(ctx, strings.Join(cmd, " "))
}

// ShowJob reports detailed information about one job using scontrol.
func (s *Slurm) ShowJob(ctx context.Context, req *JobDetailRequest) (*CommandResult, error) {
	if req.JobID == "" {
		return nil, ErrMissingJobID
	}
	return s.run(ctx, fmt.Sprintf("scontrol show job %s", shellQuote(req.JobID)))
}

// ShowNode reports detailed information about one node, or about every node
// when no node name is supplied.
func (s *Slurm) ShowNode(ctx context.Context, req *NodeDetailRequest) (*CommandResult, error) {
	if req.NodeName == "" {
		return s.run(ctx, "scontrol show nodes")
	}
	return s.run(ctx, fmt.Sprintf("scontrol show node %s", shellQuote(req.NodeName)))
}

// Cancel kills a job using the scancel command.
func (s *Slurm) Cancel(ctx context.Context, req *CancelRequest) (*CommandResult, error) {
	if req.JobID == "" {
		return nil, ErrMissingJobID
	}
	return s.run(ctx, fmt.Sprintf("scancel %s", shellQuote(req.JobID)))
}

// HealthCheck runs squeue to check that the scheduler responds.
func (s *Slurm) HealthCheck(ctx context.Context) error {
	res, err := s.run(ctx, "squeue")
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("healthcheck failed: %s", res.ErrorMessage())
	}
	return nil
}

// run executes one command and wraps the raw triple into a CommandResult.
// Transport failures propagate as errors; a nonzero exit code yields a
// result with Success=false.
func (s *Slurm) run(ctx context.Context, command string) (*CommandResult, error) {
	stdout, stderr, exitCode, err := s.executor.Exec(ctx, command)
	if err != nil {
		s.log.Error("command execution failed",
			logger.String("command", command),
			logger.Error(err),
		)
		return nil, err
	}

	res := &CommandResult{
		Command:  command,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
		Success:  exitCode == 0,
	}
	if !res.Success {
		s.log.Warn("command returned nonzero exit code",
			logger.String("command", command),
			logger.Int("exit_code", exitCode),
			logger.String("stderr", stderr),
		)
	}
	return res, nil
}

// quoteFormat wraps a format string in double quotes for the remote shell.
// Format strings contain spaces and percent directives but never quotes.
func quoteFormat(format string) string {
	return `"` + format + `"`
}

// shellQuote quotes an argument for the remote POSIX shell. Common safe
// characters stay untouched; anything else is single-quoted with the
// standard '\'' escape for embedded single quotes.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return false
		}
		switch r {
		case '-', '_', '.', '/', '@', ':', ',', '%', '+', '=':
			return false
		}
		return true
	}) == -1 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
