package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/workshop-backend/internal/adapter/handler/http"
	"github.com/wekeepgrowing/workshop-backend/internal/adapter/notifier"
	"github.com/wekeepgrowing/workshop-backend/internal/clock"
	"github.com/wekeepgrowing/workshop-backend/internal/config"
	"github.com/wekeepgrowing/workshop-backend/internal/infrastructure/database"
	grpcServer "github.com/wekeepgrowing/workshop-backend/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/workshop-backend/internal/infrastructure/http"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/autosave"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/realtime"
	"github.com/wekeepgrowing/workshop-backend/pkg/logger"
	"github.com/wekeepgrowing/workshop-backend/pkg/messaging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("service", cfg.Service.Name))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, &cfg.Service, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Realtime fan-out; without redis every instance only sees its own changes
	origin := uuid.NewString()
	var (
		redisClient messaging.RedisClient
		publisher   usecase.ChangePublisher = realtime.Nop{}
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = messaging.NewRedisClient(messaging.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			zapLogger.Warn("Redis unavailable, realtime sync disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			publisher = realtime.NewPublisher(redisClient, origin, zapLogger)
		}
	}

	vatRate, err := cfg.Pricing.Rate()
	if err != nil {
		zapLogger.Fatal("Invalid VAT rate", zap.Error(err))
	}

	mailer := notifier.NewEmailNotifier(cfg.Email, zapLogger)
	if !mailer.Enabled() {
		zapLogger.Info("SMTP host not set, status emails disabled")
	}

	writeupService := usecase.NewWriteupService(
		repos.WriteupRepositories(),
		publisher,
		mailer,
		clock.Real(),
		vatRate,
		zapLogger,
	)

	drafts := autosave.NewRegistry(writeupService, writeupService, clock.Real(), autosave.Delays{
		Fields: cfg.Autosave.FieldsDelay,
		Tasks:  cfg.Autosave.TasksDelay,
		Extras: cfg.Autosave.ExtrasDelay,
	}, zapLogger)

	if redisClient != nil {
		listener := realtime.NewListener(
			redisClient,
			origin,
			realtime.NewSessionSync(writeupService, drafts, zapLogger),
			zapLogger,
		)
		go func() {
			if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
				zapLogger.Error("Realtime listener stopped", zap.Error(err))
			}
		}()
	}

	// Initialize servers
	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, handlers.NewWriteupHandler(zapLogger, writeupService, drafts))

	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()
	grpcSrv.SetServing(true)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")
	grpcSrv.SetServing(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	// save whatever the debouncers still hold before the database goes away
	if err := drafts.CloseAll(shutdownCtx); err != nil {
		zapLogger.Error("Failed to flush autosave drafts", zap.Error(err))
	}
	cancel()

	if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
