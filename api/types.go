package api

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope returned by every operation endpoint. Command
// echoes the literal command line issued on the cluster, so callers can
// diagnose failures.
type Response struct {
	Status  string `json:"status"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Command string `json:"command,omitempty"`
}

// ConnectionStatus reports the state of the SSH session.
type ConnectionStatus struct {
	Status string `json:"status"`
	Host   string `json:"host"`
	User   string `json:"user"`
	Port   int    `json:"port"`
}

type QueueParams struct {
	User      string `json:"user"`
	JobID     string `json:"job_id"`
	Partition string `json:"partition"`
	Format    string `json:"format"`
}

type ClusterParams struct {
	Partition string `json:"partition"`
	Format    string `json:"format"`
	Nodes     string `json:"nodes"`
}

type AcctParams struct {
	JobID     string `json:"job_id"`
	User      string `json:"user"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Format    string `json:"format"`
}

type JobParams struct {
	JobID string `json:"job_id"`
}

type NodeParams struct {
	Node string `json:"node"`
}
