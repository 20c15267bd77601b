package executor

import (
	"context"
	"time"

	"github.com/DataWorkbench/glog"
	"github.com/pkg/errors"

	"github.com/DataWorkbench/paimonweb/gateway"
)

// GatewayClient is the part of *gateway.Client the executor drives.
type GatewayClient interface {
	OpenSession(ctx context.Context, name string) (*gateway.Session, error)
	ConfigureSession(ctx context.Context, sessionID string, statement string, timeout time.Duration) error
	CloseSession(ctx context.Context, sessionID string) gateway.CleanupResult
	ExecuteStatement(ctx context.Context, sessionID string, statement string, timeout time.Duration) (string, error)
	FetchResults(ctx context.Context, sessionID string, operationID string, token int64) (*gateway.ResultPage, error)
	CancelOperation(ctx context.Context, sessionID string, operationID string) gateway.CleanupResult
	CloseOperation(ctx context.Context, sessionID string, operationID string) gateway.CleanupResult
}

type GatewayExecutorFactory struct {
	cfg ExecuteConfig
}

func NewGatewayExecutorFactory(cfg ExecuteConfig) (ExecutorFactory, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("flink sql gateway client is not configured")
	}
	return &GatewayExecutorFactory{cfg: cfg}, nil
}

// CreateExecutor reuses the configured session or opens a new one, then
// runs the init statements one after another before returning.
func (f *GatewayExecutorFactory) CreateExecutor(ctx context.Context) (Executor, error) {
	session := f.cfg.Session
	owns := false
	if session == nil {
		var err error
		if session, err = f.cfg.Gateway.OpenSession(ctx, f.cfg.SessionName); err != nil {
			return nil, err
		}
		owns = true
	}

	ex := &GatewayExecutor{
		client:        f.cfg.Gateway,
		session:       session,
		ownsSession:   owns,
		submitTimeout: f.cfg.SubmitTimeout,
		logger:        f.cfg.Logger,
	}
	for _, stmt := range f.cfg.InitStatements {
		if err := f.cfg.Gateway.ConfigureSession(ctx, session.ID, stmt, f.cfg.ConfigureTimeout); err != nil {
			_ = ex.Close(ctx)
			return nil, errors.Wrapf(err, "configure session with %q", stmt)
		}
	}
	return ex, nil
}

type GatewayExecutor struct {
	client        GatewayClient
	session       *gateway.Session
	ownsSession   bool
	submitTimeout time.Duration
	logger        *glog.Logger
}

func (e *GatewayExecutor) Session() *gateway.Session {
	return e.session
}

func (e *GatewayExecutor) ExecuteSQL(ctx context.Context, statement string) (*ExecutionResult, error) {
	operationID, err := e.client.ExecuteStatement(ctx, e.session.ID, statement, e.submitTimeout)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Msg("statement submitted").String("session_id", e.session.ID).String("operation_id", operationID).Fire()
	return e.FetchResults(ctx, FetchResultParams{SessionID: e.session.ID, OperationID: operationID, Token: 0})
}

func (e *GatewayExecutor) FetchResults(ctx context.Context, params FetchResultParams) (*ExecutionResult, error) {
	page, err := e.client.FetchResults(ctx, params.SessionID, params.OperationID, params.Token)
	if err != nil {
		return nil, err
	}
	return &ExecutionResult{
		SessionID:     params.SessionID,
		OperationID:   params.OperationID,
		JobID:         page.JobID,
		ResultKind:    page.ResultKind,
		IsQueryResult: page.IsQueryResult,
		Columns:       page.Columns,
		Rows:          page.Rows,
		ShouldFetch:   page.HasNext,
		NextToken:     page.NextToken,
	}, nil
}

func (e *GatewayExecutor) Stop(ctx context.Context, params FetchResultParams) gateway.CleanupResult {
	canceled := e.client.CancelOperation(ctx, params.SessionID, params.OperationID)
	closed := e.client.CloseOperation(ctx, params.SessionID, params.OperationID)
	if !canceled.OK() {
		return canceled
	}
	return closed
}

// Close closes the session only when this executor opened it.
func (e *GatewayExecutor) Close(ctx context.Context) gateway.CleanupResult {
	if !e.ownsSession {
		return gateway.CleanupResult{}
	}
	return e.client.CloseSession(ctx, e.session.ID)
}
