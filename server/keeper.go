package server

import (
	"context"
	"sync"
	"time"

	"github.com/DataWorkbench/glog"
	"github.com/lthibault/jitterbug/v2"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/DataWorkbench/paimonweb/gateway"
)

// GatewayServiceName is the health service name reporting whether the sql
// gateway keeps our session alive.
const GatewayServiceName = "paimonweb.gateway"

type SessionGateway interface {
	OpenSession(ctx context.Context, name string) (*gateway.Session, error)
	TriggerSessionHeartbeat(ctx context.Context, sessionID string) gateway.SessionStatus
	CloseSession(ctx context.Context, sessionID string) gateway.CleanupResult
}

// SessionKeeper holds one gateway session open by sending heartbeats, and
// opens a new one whenever the gateway reports the current session inactive.
type SessionKeeper struct {
	client   SessionGateway
	name     string
	interval time.Duration
	health   *health.Server
	logger   *glog.Logger

	mu      sync.RWMutex
	session *gateway.Session
}

func NewSessionKeeper(client SessionGateway, name string, interval time.Duration, hs *health.Server, logger *glog.Logger) *SessionKeeper {
	if logger == nil {
		logger = glog.NewDefault()
	}
	return &SessionKeeper{
		client:   client,
		name:     name,
		interval: interval,
		health:   hs,
		logger:   logger,
	}
}

// Session returns the session currently kept alive, nil if none is open.
func (k *SessionKeeper) Session() *gateway.Session {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.session
}

// Beat sends one heartbeat, reopening the session when needed, and returns
// the resulting session status.
func (k *SessionKeeper) Beat(ctx context.Context) gateway.SessionStatus {
	k.mu.Lock()
	defer k.mu.Unlock()

	status := gateway.SessionInactive
	if k.session != nil {
		status = k.client.TriggerSessionHeartbeat(ctx, k.session.ID)
		if status == gateway.SessionInactive {
			k.logger.Warn().Msg("gateway session inactive, reopen it").String("session_id", k.session.ID).Fire()
			k.session = nil
		}
	}
	if k.session == nil {
		session, err := k.client.OpenSession(ctx, k.name)
		if err != nil {
			k.logger.Error().Msg("open gateway session failed").String("reason", err.Error()).Fire()
		} else {
			k.logger.Info().Msg("gateway session opened").String("session_id", session.ID).String("name", session.Name).Fire()
			k.session = session
			status = session.Status
		}
	}
	k.setServing(status == gateway.SessionActive)
	return status
}

// Run beats immediately and then on a jittered interval until ctx is done,
// closing the kept session before it returns.
func (k *SessionKeeper) Run(ctx context.Context) error {
	k.Beat(ctx)

	ticker := jitterbug.New(k.interval, &jitterbug.Norm{Stdev: k.interval / 10, Mean: 0})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			k.close()
			return ctx.Err()
		case <-ticker.C:
			k.Beat(ctx)
		}
	}
}

func (k *SessionKeeper) close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.setServing(false)
	if k.session == nil {
		return
	}
	// the run context is already done.
	if r := k.client.CloseSession(context.Background(), k.session.ID); !r.OK() {
		k.logger.Warn().Msg("close gateway session failed").String("session_id", k.session.ID).String("reason", r.Err.Error()).Fire()
	}
	k.session = nil
}

func (k *SessionKeeper) setServing(serving bool) {
	if k.health == nil {
		return
	}
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	k.health.SetServingStatus(GatewayServiceName, status)
}
