// internal/server/app_server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/SinaHo/investment-backend/internal/config"
	"github.com/SinaHo/investment-backend/internal/database"
	"github.com/SinaHo/investment-backend/internal/handler"
	"github.com/SinaHo/investment-backend/internal/middleware"
	"github.com/SinaHo/investment-backend/internal/repository"
	"github.com/SinaHo/investment-backend/internal/worker"
)

// AppServer runs the REST API, the ops gRPC server and the accrual worker.
type AppServer struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	rdb    *redis.Client
	HTTP   *http.Server
	GRPC   *grpc.Server
	health *health.Server
	worker *worker.DailyReturns
}

// NewOpsServer builds the gRPC server carrying health and reflection.
func NewOpsServer(sugar *zap.SugaredLogger) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(middleware.UnaryLoggingInterceptor(sugar)),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	return grpcServer, healthServer
}

func NewAppServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*AppServer, error) {
	sugar := logger.Sugar()

	// PostgreSQL (via sqlx)
	db, err := database.ConnectPostgres(cfg.Postgres)
	if err != nil {
		sugar.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}

	// Redis is optional; without it the worker lease is process local.
	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		sugar.Errorf("failed to ping redis: %v", err)
		_ = db.Close()
		return nil, err
	}
	if rdb == nil {
		sugar.Warn("redis.addr not set, daily returns lock is local to this process")
	}

	// Repository → Service → Handler
	store := repository.NewStore(db)
	closeAll := func() {
		_ = db.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
	}
	comps, err := Wire(cfg, store, rdb, sugar)
	if err != nil {
		closeAll()
		return nil, err
	}
	if err := comps.SeedOnStart(ctx, cfg.Seed); err != nil {
		sugar.Errorf("failed to seed database: %v", err)
		closeAll()
		return nil, err
	}
	h := handler.New(comps.Services, sugar.Named("http"))
	router := NewRouter(h, comps.Uploads.Dir(), db.PingContext, sugar.Named("http"))

	grpcServer, healthServer := NewOpsServer(sugar.Named("grpc"))

	var daily *worker.DailyReturns
	if cfg.Scheduler.Enabled {
		daily = comps.Worker
	}

	sugar.Infof("AppServer initialized successfully")
	return &AppServer{
		cfg:    cfg,
		logger: logger,
		db:     db,
		rdb:    rdb,
		HTTP: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		GRPC:   grpcServer,
		health: healthServer,
		worker: daily,
	}, nil
}

// Run serves until ctx is cancelled or a listener fails, then shuts down.
func (a *AppServer) Run(ctx context.Context) error {
	sugar := a.logger.Sugar()

	grpcAddr := fmt.Sprintf(":%d", a.cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		sugar.Errorf("listen error on %s: %v", grpcAddr, err)
		return fmt.Errorf("listen: %w", err)
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	workerDone := make(chan struct{})
	if a.worker != nil {
		go func() {
			defer close(workerDone)
			a.worker.Run(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	errCh := make(chan error, 2)
	go func() {
		sugar.Infof("gRPC ops server listening on %s", grpcAddr)
		if err := a.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("serve gRPC: %w", err)
		}
	}()
	go func() {
		sugar.Infof("HTTP server listening on %s", a.HTTP.Addr)
		if err := a.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve HTTP: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		sugar.Info("Received shutdown signal")
	case runErr = <-errCh:
		sugar.Errorw("server failed", "error", runErr)
	}

	stopWorker()
	a.GracefulStop()
	<-workerDone
	return runErr
}

func (a *AppServer) GracefulStop() {
	sugar := a.logger.Sugar()
	sugar.Info("Shutting down servers gracefully")
	a.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.HTTP.Shutdown(ctx); err != nil {
		sugar.Warnw("HTTP shutdown", "error", err)
	}
	a.GRPC.GracefulStop()

	if err := a.db.Close(); err != nil {
		sugar.Warnw("close postgres", "error", err)
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			sugar.Warnw("close redis", "error", err)
		}
	}
	sugar.Info("Resources closed, server stopped")
}
