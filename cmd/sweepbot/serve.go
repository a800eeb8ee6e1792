package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aatumaykin/sweepbot/internal/config"
	"github.com/aatumaykin/sweepbot/internal/constants"
	"github.com/aatumaykin/sweepbot/internal/logger"
	"github.com/aatumaykin/sweepbot/internal/messages"
	"github.com/aatumaykin/sweepbot/internal/metrics"
	"github.com/aatumaykin/sweepbot/internal/store"
	"github.com/aatumaykin/sweepbot/internal/sweep"
	"github.com/aatumaykin/sweepbot/internal/telegram"
	"github.com/aatumaykin/sweepbot/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	serveConfigPath string
	serveLogLevel   string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start Sweepbot (main command)",
	Long: `Start Sweepbot with specified configuration.
This will initialize all components (logger, message index, Telegram
connector, scheduler) and handle graceful shutdown.

The serve command is the main entry point for running Sweepbot.`,
	Run: serveHandler,
}

func serveHandler(cmd *cobra.Command, args []string) {
	// Load .env file if exists
	if err := config.LoadEnvOptional(constants.DefaultEnvPath); err != nil {
		fmt.Printf("❌ Failed to load .env file: %v\n", err)
		os.Exit(1)
	}

	// Determine config path
	configPath := serveConfigPath
	if configPath == "" {
		configPath = constants.DefaultConfigPath
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Print(messages.FormatConfigLoadError(err))
		os.Exit(1)
	}

	// Override log level if flag is set
	if serveLogLevel != "" {
		cfg.Logging.Level = serveLogLevel
	}

	// Validate configuration
	if errors := cfg.Validate(); len(errors) > 0 {
		fmt.Print(messages.FormatValidationErrors(errors))
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Printf("❌ Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	// Log startup information
	log.Info("🚀 Starting Sweepbot",
		logger.Field{Key: "version", Value: Version},
		logger.Field{Key: "git_commit", Value: GitCommit},
		logger.Field{Key: "config", Value: configPath},
		logger.Field{Key: "workspace", Value: cfg.Workspace.Path},
		logger.Field{Key: "batch_size", Value: cfg.Sweep.BatchSize},
		logger.Field{Key: "schedule_jobs", Value: len(cfg.Schedule.Jobs)},
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize workspace
	ws := workspace.New(cfg.Workspace)
	if err := ws.EnsureSubpath(workspace.SubdirIndex); err != nil {
		log.Error("Failed to create index directory", err)
		os.Exit(1)
	}

	// Initialize message index
	index, err := store.NewIndex(ws.Subpath(workspace.SubdirIndex))
	if err != nil {
		log.Error("Failed to open message index", err)
		os.Exit(1)
	}

	// Initialize metrics if enabled
	var m *metrics.SweepMetrics
	if cfg.Metrics.Enabled {
		m = metrics.New("sweepbot")
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.ListenAddr); err != nil {
				log.Error("Metrics server stopped", err,
					logger.Field{Key: "addr", Value: cfg.Metrics.ListenAddr})
			}
		}()
		log.Info("📊 Metrics listener started",
			logger.Field{Key: "addr", Value: cfg.Metrics.ListenAddr})
	}

	// Initialize Telegram connector
	log.Info("📱 Initializing Telegram connector")
	connector := telegram.New(*cfg, index, m, log)
	if err := connector.Start(ctx); err != nil {
		log.Error("Failed to start Telegram connector", err)
		os.Exit(1)
	}

	// Initialize scheduler for periodic sweeps
	var scheduler *sweep.Scheduler
	if len(cfg.Schedule.Jobs) > 0 {
		scheduler, err = sweep.NewScheduler(connector.Service(), cfg.Schedule.Jobs, log)
		if err != nil {
			log.Error("Failed to initialize scheduler", err)
			os.Exit(1)
		}
		scheduler.Start()
		log.Info("⏰ Scheduler started",
			logger.Field{Key: "jobs", Value: len(cfg.Schedule.Jobs)})
	}

	log.Info("✅ Sweepbot is running")

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("⏳ Received shutdown signal",
		logger.Field{Key: "signal", Value: sig.String()})

	// Graceful shutdown
	log.Info("🛑 Shutting down Sweepbot...")

	if scheduler != nil {
		scheduler.Stop()
	}

	if err := connector.Stop(); err != nil {
		log.Error("Failed to stop Telegram connector", err)
	}

	cancel()

	log.Info("👋 Sweepbot stopped gracefully")
	os.Exit(0)
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to configuration file (default: ./config.toml)")
	serveCmd.Flags().StringVarP(&serveLogLevel, "log-level", "l", "", "Override log level (debug, info, warn, error)")
}
