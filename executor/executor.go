package executor

import (
	"context"
	"strings"

	"github.com/DataWorkbench/paimonweb/gateway"
	"github.com/DataWorkbench/paimonweb/qerror"
)

type TaskType string

const (
	TaskTypeFlinkSQLGateway TaskType = "FLINK_SQL_GATEWAY"
	TaskTypeSpark           TaskType = "SPARK"
)

// TaskTypes lists every declared task type, implemented or not.
var TaskTypes = []TaskType{TaskTypeFlinkSQLGateway, TaskTypeSpark}

func (t TaskType) declared() bool {
	for _, d := range TaskTypes {
		if d == t {
			return true
		}
	}
	return false
}

// ParseTaskType accepts a task type name in any case.
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.declared() {
		return "", qerror.InvalidTaskType.Format(s)
	}
	return t, nil
}

type ExecutionResult struct {
	SessionID     string           `json:"session_id"`
	OperationID   string           `json:"operation_id"`
	JobID         string           `json:"job_id,omitempty"`
	ResultKind    string           `json:"result_kind"`
	IsQueryResult bool             `json:"is_query_result"`
	Columns       []gateway.Column `json:"columns"`
	Rows          []gateway.Row    `json:"rows"`
	ShouldFetch   bool             `json:"should_fetch"`
	NextToken     int64            `json:"next_token"`
}

type FetchResultParams struct {
	SessionID   string `json:"session_id"`
	OperationID string `json:"operation_id"`
	Token       int64  `json:"token"`
}

type Executor interface {
	// ExecuteSQL submits a statement and returns its first result page.
	ExecuteSQL(ctx context.Context, statement string) (*ExecutionResult, error)
	FetchResults(ctx context.Context, params FetchResultParams) (*ExecutionResult, error)
	// Stop cancels and closes a running operation.
	Stop(ctx context.Context, params FetchResultParams) gateway.CleanupResult
	Close(ctx context.Context) gateway.CleanupResult
}

type ExecutorFactory interface {
	CreateExecutor(ctx context.Context) (Executor, error)
}
