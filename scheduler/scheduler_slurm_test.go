package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/squarefactory/slurm-api/logger"
	"github.com/squarefactory/slurm-api/mocks"
	"github.com/squarefactory/slurm-api/scheduler"
)

func init() {
	logger.InitNop()
}

const (
	defaultSqueueCmd = `squeue -o "%.18i %.9P %.8j %.8u %.2t %.10M %.6D %R"`
	defaultSinfoCmd  = `sinfo -o "%.20P %.5a %.10l %.6D %.6t %.14N"`
	defaultSacctCmd  = `sacct --format JobID,JobName,Partition,Account,AllocCPUS,State,ExitCode`
)

type SlurmTestSuite struct {
	suite.Suite
	executor *mocks.Executor
	impl     *scheduler.Slurm
}

func (suite *SlurmTestSuite) BeforeTest(suiteName, testName string) {
	suite.executor = mocks.NewExecutor(suite.T())
	suite.impl = scheduler.NewSlurm(suite.executor)
}

func (suite *SlurmTestSuite) TestSqueueNoFilters() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, defaultSqueueCmd).
		Return("JOBID PARTITION NAME", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Squeue(ctx, &scheduler.QueueRequest{})

	// Assert
	suite.NoError(err)
	suite.True(res.Success)
	suite.Equal(defaultSqueueCmd, res.Command)
	suite.Equal("JOBID PARTITION NAME", res.Stdout)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestSqueueAllFilters() {
	// Arrange
	expected := defaultSqueueCmd + " -u u -j 5 -p p"
	suite.executor.On("Exec", mock.Anything, expected).
		Return("5 p job u", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Squeue(ctx, &scheduler.QueueRequest{
		User:      "u",
		JobID:     "5",
		Partition: "p",
	})

	// Assert
	suite.NoError(err)
	suite.Equal(expected, res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestSqueueSingleFilter() {
	// Arrange
	expected := defaultSqueueCmd + " -p debug"
	suite.executor.On("Exec", mock.Anything, expected).
		Return("", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Squeue(ctx, &scheduler.QueueRequest{Partition: "debug"})

	// Assert
	suite.NoError(err)
	suite.Equal(expected, res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestSqueueCustomFormat() {
	// Arrange
	expected := `squeue -o "%i %T" -u alice`
	suite.executor.On("Exec", mock.Anything, expected).
		Return("1 RUNNING", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Squeue(ctx, &scheduler.QueueRequest{
		User:   "alice",
		Format: "%i %T",
	})

	// Assert
	suite.NoError(err)
	suite.Equal(expected, res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestSqueueQuotesUnsafeValues() {
	// Arrange
	expected := defaultSqueueCmd + ` -u 'bad user'`
	suite.executor.On("Exec", mock.Anything, expected).
		Return("", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Squeue(ctx, &scheduler.QueueRequest{User: "bad user"})

	// Assert
	suite.NoError(err)
	suite.Equal(expected, res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestSinfoNoFilters() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, defaultSinfoCmd).
		Return("PARTITION AVAIL", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Sinfo(ctx, &scheduler.ClusterRequest{})

	// Assert
	suite.NoError(err)
	suite.True(res.Success)
	suite.Equal(defaultSinfoCmd, res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestSinfoAllFilters() {
	// Arrange
	expected := defaultSinfoCmd + ` -p gpu -n 'node[1-4]'`
	suite.executor.On("Exec", mock.Anything, expected).
		Return("", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Sinfo(ctx, &scheduler.ClusterRequest{
		Partition: "gpu",
		Nodes:     "node[1-4]",
	})

	// Assert
	suite.NoError(err)
	suite.Equal(expected, res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestSacctNoFilters() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, defaultSacctCmd).
		Return("JobID JobName", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Sacct(ctx, &scheduler.AcctRequest{})

	// Assert
	suite.NoError(err)
	suite.Equal(defaultSacctCmd, res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestSacctAllFilters() {
	// Arrange
	expected := defaultSacctCmd + " -j 42 -u alice -S 2024-01-01 -E 2024-02-01"
	suite.executor.On("Exec", mock.Anything, expected).
		Return("", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Sacct(ctx, &scheduler.AcctRequest{
		JobID:     "42",
		User:      "alice",
		StartTime: "2024-01-01",
		EndTime:   "2024-02-01",
	})

	// Assert
	suite.NoError(err)
	suite.Equal(expected, res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestShowJob() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, "scontrol show job 42").
		Return("JobId=42 JobName=test", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.ShowJob(ctx, &scheduler.JobDetailRequest{JobID: "42"})

	// Assert
	suite.NoError(err)
	suite.Equal("JobId=42 JobName=test", res.Stdout)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestShowJobRequiresJobID() {
	// Act
	res, err := suite.impl.ShowJob(context.Background(), &scheduler.JobDetailRequest{})

	// Assert
	suite.ErrorIs(err, scheduler.ErrMissingJobID)
	suite.Nil(res)
	suite.executor.AssertNotCalled(suite.T(), "Exec")
}

func (suite *SlurmTestSuite) TestShowNode() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, "scontrol show node cn01").
		Return("NodeName=cn01", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.ShowNode(ctx, &scheduler.NodeDetailRequest{NodeName: "cn01"})

	// Assert
	suite.NoError(err)
	suite.Equal("scontrol show node cn01", res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestShowNodeAllNodes() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, "scontrol show nodes").
		Return("NodeName=cn01\nNodeName=cn02", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.ShowNode(ctx, &scheduler.NodeDetailRequest{})

	// Assert
	suite.NoError(err)
	suite.Equal("scontrol show nodes", res.Command)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestCancel() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, "scancel 42").
		Return("", "", 0, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Cancel(ctx, &scheduler.CancelRequest{JobID: "42"})

	// Assert
	suite.NoError(err)
	suite.True(res.Success)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestCancelRequiresJobID() {
	// Act
	res, err := suite.impl.Cancel(context.Background(), &scheduler.CancelRequest{})

	// Assert
	suite.ErrorIs(err, scheduler.ErrMissingJobID)
	suite.Nil(res)
	suite.executor.AssertNotCalled(suite.T(), "Exec")
}

func (suite *SlurmTestSuite) TestNonzeroExitIsNotAnError() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, "scancel 42").
		Return("", "scancel: error: Invalid job id 42", 1, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Cancel(ctx, &scheduler.CancelRequest{JobID: "42"})

	// Assert
	suite.NoError(err)
	suite.False(res.Success)
	suite.Equal(1, res.ExitCode)
	suite.Equal("scancel: error: Invalid job id 42", res.ErrorMessage())
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestErrorFallsBackToExitCode() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, defaultSqueueCmd).
		Return("", "", 2, nil)
	ctx := context.Background()

	// Act
	res, err := suite.impl.Squeue(ctx, &scheduler.QueueRequest{})

	// Assert
	suite.NoError(err)
	suite.False(res.Success)
	suite.Equal("command exited with code 2", res.ErrorMessage())
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestTransportErrorPropagates() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, defaultSqueueCmd).
		Return("", "", -1, errors.New("connection lost"))
	ctx := context.Background()

	// Act
	res, err := suite.impl.Squeue(ctx, &scheduler.QueueRequest{})

	// Assert
	suite.Error(err)
	suite.Nil(res)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestHealthCheck() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, "squeue").
		Return("ok", "", 0, nil)
	ctx := context.Background()

	// Act
	err := suite.impl.HealthCheck(ctx)

	// Assert
	suite.NoError(err)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *SlurmTestSuite) TestHealthCheckFailure() {
	// Arrange
	suite.executor.On("Exec", mock.Anything, "squeue").
		Return("", "slurm_load_jobs error", 1, nil)
	ctx := context.Background()

	// Act
	err := suite.impl.HealthCheck(ctx)

	// Assert
	suite.Error(err)
	suite.Contains(err.Error(), "slurm_load_jobs error")
	suite.executor.AssertExpectations(suite.T())
}

func TestSlurmTestSuite(t *testing.T) {
	suite.Run(t, &SlurmTestSuite{})
}
