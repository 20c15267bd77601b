package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DataWorkbench/glog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"

	"github.com/DataWorkbench/paimonweb/config"
	"github.com/DataWorkbench/paimonweb/executor"
	"github.com/DataWorkbench/paimonweb/gateway"
	"github.com/DataWorkbench/paimonweb/service"
	"github.com/DataWorkbench/paimonweb/submit"
	"github.com/DataWorkbench/paimonweb/submit/yarn"
)

// Components are the collaborators shared by the server and the one-shot
// commands.
type Components struct {
	DB      *gorm.DB
	Records *service.RecordStore
	Gateway *gateway.Client
}

func NewGatewayClient(cfg *config.GatewayConfig, lp *glog.Logger) *gateway.Client {
	opts := []gateway.Option{
		gateway.WithAPIVersion(cfg.APIVersion),
		gateway.WithPollInterval(cfg.PollInterval),
		gateway.WithPollTimeout(cfg.PollTimeout),
		gateway.WithMaxPollAttempts(cfg.MaxPollAttempts),
		gateway.WithLogger(lp),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, gateway.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
	}
	return gateway.NewClient(cfg.Address, cfg.Port, opts...)
}

// NewComponents opens the record store, migrating its table, and the
// gateway client.
func NewComponents(ctx context.Context, cfg *config.Config, lp *glog.Logger) (c *Components, err error) {
	c = &Components{}
	if c.DB, err = service.OpenDB(cfg.Database); err != nil {
		return nil, err
	}
	c.Records = service.NewRecordStore(c.DB)
	if err = c.Records.Migrate(ctx); err != nil {
		return nil, err
	}
	c.Gateway = NewGatewayClient(cfg.Gateway, lp)
	return c, nil
}

// NewJobService wires the executor registry and the YARN submitter onto c.
func NewJobService(cfg *config.Config, c *Components, lp *glog.Logger) *service.JobManagerService {
	provider := executor.NewProvider(executor.ExecuteConfig{
		Gateway:          c.Gateway,
		SessionName:      cfg.Gateway.SessionName,
		InitStatements:   cfg.Gateway.InitStatements,
		ConfigureTimeout: cfg.Gateway.ConfigureTimeout,
		SubmitTimeout:    cfg.Gateway.SubmitTimeout,
		Logger:           lp,
	})

	factory := yarn.NewFactory(cfg.Yarn.FlinkHome, yarn.WithLogger(lp))
	submitter := submit.NewSubmitter(factory,
		submit.WithPollInterval(cfg.Yarn.PollInterval),
		submit.WithPollTimeout(cfg.Yarn.PollTimeout),
		submit.WithLogger(lp),
	)
	return service.NewJobManagerService(provider, submitter, c.Records, lp)
}

func Start() (err error) {
	fmt.Printf("%s pid=%d\n", time.Now().Format(time.RFC3339Nano), os.Getpid())

	var cfg *config.Config
	if cfg, err = config.Load(); err != nil {
		return
	}

	lp := glog.NewDefault().WithLevel(glog.Level(cfg.LogLevel))
	ctx, cancel := context.WithCancel(glog.WithContext(context.Background(), lp))

	var (
		components *Components
		listener   net.Listener
		rpcServer  *grpc.Server
	)

	healthServer := health.NewServer()
	keeperDone := make(chan struct{})
	defer func() {
		cancel()
		if rpcServer != nil {
			healthServer.Shutdown()
			rpcServer.GracefulStop()
			<-keeperDone
		}
		if components != nil {
			if sqlDB, dbErr := components.DB.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
		}
		_ = lp.Close()
	}()

	if components, err = NewComponents(ctx, cfg, lp); err != nil {
		return
	}
	if info, infoErr := components.Gateway.GetInfo(ctx); infoErr != nil {
		lp.Warn().Msg("sql gateway info unavailable").String("reason", infoErr.Error()).Fire()
	} else {
		lp.Info().Msg("sql gateway connected").String("product", info.ProductName).String("version", info.Version).Fire()
	}

	if listener, err = net.Listen("tcp", cfg.GRPCServer.Address); err != nil {
		return
	}
	rpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(rpcServer, healthServer)

	keeper := NewSessionKeeper(components.Gateway, cfg.Gateway.SessionName, cfg.Gateway.HeartbeatInterval, healthServer, lp)
	go func() {
		_ = keeper.Run(ctx)
		close(keeperDone)
	}()

	sigGroup := []os.Signal{syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM}
	sigChan := make(chan os.Signal, len(sigGroup))
	signal.Notify(sigChan, sigGroup...)

	serveChan := make(chan error, 1)
	go func() {
		lp.Info().String("grpc server listen on", cfg.GRPCServer.Address).Fire()
		serveChan <- rpcServer.Serve(listener)
	}()

	select {
	case err = <-serveChan:
	case sig := <-sigChan:
		lp.Info().String("receive system signal", sig.String()).Fire()
	}
	return
}
