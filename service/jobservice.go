package service

import (
	"context"
	"strings"

	"github.com/DataWorkbench/glog"
	"github.com/google/uuid"

	"github.com/DataWorkbench/paimonweb/executor"
	"github.com/DataWorkbench/paimonweb/gateway"
	"github.com/DataWorkbench/paimonweb/submit"
)

type SQLResult struct {
	RecordID   string           `json:"record_id"`
	JobID      string           `json:"job_id,omitempty"`
	ResultKind string           `json:"result_kind"`
	Columns    []gateway.Column `json:"columns"`
	Rows       []gateway.Row    `json:"rows"`
	Truncated  bool             `json:"truncated"`
}

type JobManagerService struct {
	provider  *executor.Provider
	submitter *submit.Submitter
	records   *RecordStore
	logger    *glog.Logger
}

func NewJobManagerService(provider *executor.Provider, submitter *submit.Submitter,
	records *RecordStore, logger *glog.Logger) *JobManagerService {
	return &JobManagerService{
		provider:  provider,
		submitter: submitter,
		records:   records,
		logger:    logger,
	}
}

// RunSQL executes statement on the backend of taskType and pages through
// its result. With maxRows > 0 it stops the operation once that many rows
// arrived and marks the result truncated.
func (jm *JobManagerService) RunSQL(ctx context.Context, taskType executor.TaskType, statement string, maxRows int) (*SQLResult, error) {
	factory, err := jm.provider.GetExecutorFactory(taskType)
	if err != nil {
		return nil, err
	}
	ex, err := factory.CreateExecutor(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := ex.Close(ctx); !r.OK() {
			jm.logger.Warn().Msg("close executor failed").String("reason", r.Err.Error()).Fire()
		}
	}()

	record := &JobRecord{
		ID:        uuid.New().String(),
		TaskType:  string(taskType),
		Statement: statement,
		State:     StateRunning,
	}

	result, err := ex.ExecuteSQL(ctx, statement)
	if err != nil {
		record.State = StateFailed
		record.Message = err.Error()
		jm.saveRecord(ctx, record)
		return nil, err
	}
	record.SessionID = result.SessionID
	record.OperationID = result.OperationID
	record.FlinkIDs = result.JobID

	out := &SQLResult{
		RecordID:   record.ID,
		JobID:      result.JobID,
		ResultKind: result.ResultKind,
		Columns:    result.Columns,
		Rows:       result.Rows,
	}
	params := executor.FetchResultParams{SessionID: result.SessionID, OperationID: result.OperationID}
	stopped := false
	for result.ShouldFetch {
		if maxRows > 0 && len(out.Rows) >= maxRows {
			if r := ex.Stop(ctx, params); !r.OK() {
				jm.logger.Warn().Msg("stop operation failed").String("operation_id", params.OperationID).String("reason", r.Err.Error()).Fire()
			}
			out.Truncated = true
			stopped = true
			break
		}
		params.Token = result.NextToken
		if result, err = ex.FetchResults(ctx, params); err != nil {
			record.State = StateFailed
			record.Message = err.Error()
			jm.saveRecord(ctx, record)
			return nil, err
		}
		if len(out.Columns) == 0 {
			out.Columns = result.Columns
		}
		out.Rows = append(out.Rows, result.Rows...)
	}
	if maxRows > 0 && len(out.Rows) > maxRows {
		out.Rows = out.Rows[:maxRows]
		out.Truncated = true
	}

	record.State = StateSucceed
	if stopped {
		record.State = StateCanceled
	}
	jm.saveRecord(ctx, record)
	return out, nil
}

// SubmitJob deploys an application-mode job; the outcome is recorded
// whether or not the submission succeeded.
func (jm *JobManagerService) SubmitJob(ctx context.Context, config map[string]string) (*submit.Outcome, string) {
	outcome := jm.submitter.Submit(ctx, config)

	record := &JobRecord{
		ID:        uuid.New().String(),
		TaskType:  "YARN_APPLICATION",
		Statement: config[submit.KeyUserJarMainClass] + " " + config[submit.KeyUserJarParams],
		AppID:     outcome.AppID,
		FlinkIDs:  strings.Join(outcome.JobIDs, ","),
		WebURL:    outcome.WebURL,
		State:     StateRunning,
		Message:   outcome.Message,
	}
	if !outcome.Success {
		record.State = StateFailed
	}
	jm.saveRecord(ctx, record)
	return outcome, record.ID
}

func (jm *JobManagerService) GetRecord(ctx context.Context, id string) (*JobRecord, error) {
	return jm.records.Get(ctx, id)
}

func (jm *JobManagerService) saveRecord(ctx context.Context, record *JobRecord) {
	if jm.records == nil {
		return
	}
	if err := jm.records.Upsert(ctx, record); err != nil {
		jm.logger.Error().Msg("save job record failed").String("id", record.ID).String("reason", err.Error()).Fire()
	}
}
