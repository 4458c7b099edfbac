// Command writeupctl runs write-up maintenance jobs against the workshop
// database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/workshop-backend/internal/config"
	"github.com/wekeepgrowing/workshop-backend/internal/infrastructure/database"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/realtime"
	"github.com/wekeepgrowing/workshop-backend/pkg/logger"
	"github.com/wekeepgrowing/workshop-backend/pkg/messaging"
)

var (
	configPath string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "writeupctl",
	Short: "Workshop write-up maintenance",
	Long: `Maintenance commands for the workshop write-up service.

Available subcommands:
  reconcile - Reconcile checklist tasks against authorized VHC work
  seed      - Load jobs, authorizations and parts requests from YAML`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file or directory (default: configs/$APP_ENV)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(seedCmd)
}

// env bundles what every subcommand needs
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	repos  *database.Repositories
	// publisher tells running services about what a command changed
	publisher usecase.ChangePublisher
	redis     messaging.RedisClient
}

func setup() (*env, error) {
	if configPath != "" {
		if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := cfg.Log
	logCfg.Format = "console"
	if verbose {
		logCfg.Level = "debug"
	}
	log, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		_ = database.Close(db, log)
		return nil, err
	}

	e := &env{
		cfg:       cfg,
		logger:    log,
		db:        db,
		repos:     database.NewRepositories(db, &cfg.Service, log),
		publisher: realtime.Nop{},
	}
	if cfg.Redis.Addr != "" {
		client, err := messaging.NewRedisClient(messaging.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, running services will not be notified", zap.Error(err))
		} else {
			e.redis = client
			e.publisher = realtime.NewPublisher(client, "writeupctl-"+uuid.NewString(), log)
		}
	}
	return e, nil
}

func (e *env) close() {
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			e.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if err := database.Close(e.db, e.logger); err != nil {
		e.logger.Error("Failed to close database connection", zap.Error(err))
	}
	_ = e.logger.Sync()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
