// Package app wires configuration, storage, the social graph, the leaderboard
// and both transports, and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/travelboard/internal/activitylog"
	"github.com/patric-chuzhbe/travelboard/internal/auth"
	"github.com/patric-chuzhbe/travelboard/internal/config"
	"github.com/patric-chuzhbe/travelboard/internal/db/jsondb"
	"github.com/patric-chuzhbe/travelboard/internal/db/memorystorage"
	"github.com/patric-chuzhbe/travelboard/internal/db/mongodb"
	"github.com/patric-chuzhbe/travelboard/internal/db/postgresdb"
	"github.com/patric-chuzhbe/travelboard/internal/db/storage"
	"github.com/patric-chuzhbe/travelboard/internal/grpcserver"
	"github.com/patric-chuzhbe/travelboard/internal/ipchecker"
	"github.com/patric-chuzhbe/travelboard/internal/leaderboard"
	"github.com/patric-chuzhbe/travelboard/internal/logger"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/router"
	"github.com/patric-chuzhbe/travelboard/internal/service"
	"github.com/patric-chuzhbe/travelboard/internal/socialgraph"
)

const shutdownTimeout = 10 * time.Second

// App holds everything the travelboard process runs.
type App struct {
	cfg          *config.Config
	db           storage.Storage
	journal      *activitylog.Journal
	stopJournal  context.CancelFunc
	httpHandler  http.Handler
	grpcServer   *grpc.Server
	grpcListener net.Listener
}

// New loads the configuration, initializes the logger, opens the configured
// store and builds both transports.
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = GetStorageByType(context.Background(), app.cfg)
	if err != nil {
		return nil, err
	}

	signingSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.AuthSigningSecretKey)
	if err != nil {
		return nil, fmt.Errorf("in internal/app/app.go/New(): error while `base64.URLEncoding.DecodeString()` calling: %w", err)
	}
	theAuth := auth.New(app.cfg.AuthCookieName, signingSecretKey)

	guard, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.journal = activitylog.New(
		getActivitySink(app.cfg),
		app.cfg.ChannelCapacity,
		app.cfg.ActivityFlushInterval,
	)
	journalRunCtx, stopJournal := context.WithCancel(context.Background())
	app.stopJournal = stopJournal

	app.journal.Run(journalRunCtx)
	app.journal.ListenErrors(func(err error) {
		logger.Log.Debugln("Error passed from the `app.journal.ListenErrors()`:", zap.Error(err))
	})

	svc := service.New(
		socialgraph.New(app.db, app.journal),
		leaderboard.New(app.db),
		app.db,
	)

	app.httpHandler = router.New(svc, theAuth, guard)

	if app.cfg.GRPCAddr != "" {
		app.grpcServer, app.grpcListener, err = grpcserver.NewGRPCServer(
			app.cfg.GRPCAddr,
			grpcserver.NewSocialHandler(svc),
			theAuth,
		)
		if err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Run serves HTTP and gRPC until SIGINT/SIGTERM or a server failure, then
// shuts everything down and closes the store.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr, "GRPCAddr", a.cfg.GRPCAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 2)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()
	if a.grpcServer != nil {
		go func() {
			serverErrCh <- a.grpcServer.Serve(a.grpcListener)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Flushing activity and exiting...")
	case err := <-serverErrCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		runErr = errors.Join(runErr, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}

	a.stopJournal()
	a.journal.Wait()

	return errors.Join(runErr, a.db.Close())
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.MongoURI != "" {
		return models.StorageTypeMongo
	}

	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

// GetStorageByType opens the store selected by the configuration:
// MongoDB, then PostgreSQL, then a JSON file, then memory.
func GetStorageByType(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypeMongo:
		return mongodb.New(
			ctx,
			cfg.MongoURI,
			cfg.MongoDatabase,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypePostgresql:
		return postgresdb.New(
			ctx,
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}

func getActivitySink(cfg *config.Config) activitylog.Sink {
	if cfg.ActivityLogPath != "" {
		return activitylog.NewFileSink(cfg.ActivityLogPath)
	}

	return activitylog.LogSink{}
}
