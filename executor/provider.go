package executor

import (
	"time"

	"github.com/DataWorkbench/glog"

	"github.com/DataWorkbench/paimonweb/gateway"
	"github.com/DataWorkbench/paimonweb/qerror"
)

// ExecuteConfig carries what the executor backends need. Session is an
// already opened gateway session to reuse; when nil each executor opens
// its own session named SessionName.
type ExecuteConfig struct {
	Gateway          GatewayClient
	Session          *gateway.Session
	SessionName      string
	InitStatements   []string
	ConfigureTimeout time.Duration
	SubmitTimeout    time.Duration
	Logger           *glog.Logger
}

// Constructor builds the factory of one backend.
type Constructor func(cfg ExecuteConfig) (ExecutorFactory, error)

// Provider maps task types to executor factories.
type Provider struct {
	cfg      ExecuteConfig
	registry map[TaskType]Constructor
}

func NewProvider(cfg ExecuteConfig) *Provider {
	if cfg.Logger == nil {
		cfg.Logger = glog.NewDefault()
	}
	p := &Provider{cfg: cfg, registry: map[TaskType]Constructor{}}
	p.Register(TaskTypeFlinkSQLGateway, NewGatewayExecutorFactory)
	return p
}

func (p *Provider) Register(t TaskType, c Constructor) {
	p.registry[t] = c
}

// GetExecutorFactory fails with qerror.UnsupportedTaskType for a declared
// type without a backend and with qerror.InvalidTaskType for anything else.
func (p *Provider) GetExecutorFactory(t TaskType) (ExecutorFactory, error) {
	if c, ok := p.registry[t]; ok {
		return c(p.cfg)
	}
	if t.declared() {
		return nil, qerror.UnsupportedTaskType.Format(string(t))
	}
	return nil, qerror.InvalidTaskType.Format(string(t))
}
