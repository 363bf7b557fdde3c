package internal

import (
	"auction-normalizer-service/internal/adapters/boeparser"
	logger_adapter "auction-normalizer-service/internal/adapters/logger"
	metrics_adapter "auction-normalizer-service/internal/adapters/metrics"
	"auction-normalizer-service/internal/adapters/pdftext"
	postgres_adapter "auction-normalizer-service/internal/adapters/postgres"
	rabbitmq_adapter "auction-normalizer-service/internal/adapters/rabbitmq"
	"auction-normalizer-service/internal/configs"
	"auction-normalizer-service/internal/constants"
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/contracts"
	"auction-normalizer-service/internal/core/domain"
	"auction-normalizer-service/internal/core/port"
	"auction-normalizer-service/internal/core/port/usecases_port"
	"auction-normalizer-service/internal/core/usecase"
	fluentlogger "auction-normalizer-service/pkg/fluent_logger"
	"auction-normalizer-service/pkg/postgres"
	"auction-normalizer-service/pkg/rabbitmq/rabbitmq_common"
	"auction-normalizer-service/pkg/rabbitmq/rabbitmq_producer"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the normalizer process: one pass over the backlog, then exit.
type App struct {
	config        *configs.AppConfig
	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	fluentClient  *fluent.Fluent
	logger        port.LoggerPort
	out           io.Writer

	normalizeBacklogUC usecases_port.NormalizeBacklogPort
}

// NewApp is the composition root. It fails before any run row is written when
// the database is unreachable.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{
		config:       appConfig,
		fluentClient: fluentClient,
		logger:       appLogger,
		out:          os.Stdout,
	}
	if err := application.wire(baseLogger); err != nil {
		application.close()
		return nil, err
	}
	return application, nil
}

func (a *App) wire(baseLogger port.LoggerPort) error {
	cfg := a.config
	appLogger := a.logger

	rules, err := boeparser.LoadRules(cfg.Pipeline.RulesFile)
	if err != nil {
		appLogger.Error("Failed to load extraction rules", err, port.Fields{"file": cfg.Pipeline.RulesFile})
		return err
	}
	parser, err := boeparser.NewParser(rules)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	appLogger.Info("Extraction rules loaded", port.Fields{"rules_version": rules.Version})

	validator, err := contracts.NewRecordValidator()
	if err != nil {
		appLogger.Error("Failed to load record contract", err, nil)
		return fmt.Errorf("failed to load record contract: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.dbPool, err = postgres.NewClient(connectCtx, postgres.Config{
		DatabaseURL: cfg.Database.URL,
		MaxConns:    int32(cfg.Database.MaxConns),
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	if cfg.Database.AutoMigrate {
		version, dirty, err := postgres_adapter.RunMigrations(a.dbPool)
		if err != nil {
			appLogger.Error("Failed to apply migrations", err, nil)
			return err
		}
		appLogger.Info("Database schema is up to date", port.Fields{"version": version, "dirty": dirty})
	}

	sessions, err := postgres_adapter.NewSessionProvider(a.dbPool, postgres_adapter.SessionConfig{
		Backlog: postgres_adapter.BacklogConfig{
			DetailSourceTag:   cfg.Pipeline.DetailSourceTag,
			IdentifierPattern: rules.IdentifierPattern,
			SchemaVersion:     cfg.Pipeline.SchemaVersion,
		},
		Storage: postgres_adapter.StorageConfig{MergePolicy: cfg.Pipeline.MergePolicy},
	})
	if err != nil {
		return fmt.Errorf("failed to create session provider: %w", err)
	}

	var reporter port.RunReporterPort
	if cfg.RabbitMQ.URL != "" {
		reporter, err = a.wireReporter(baseLogger)
		if err != nil {
			// Run reports are optional; the pass still runs without them.
			appLogger.Warn("RabbitMQ is unavailable, run reports are disabled", port.Fields{"error": err.Error()})
			reporter = nil
		}
	}

	var metrics port.PipelineMetricsPort
	if cfg.Metrics.PushgatewayURL != "" {
		metrics = metrics_adapter.NewPipelineMetricsAdapter(cfg.Metrics.PushgatewayURL, constants.PushgatewayJob)
		appLogger.Info("Pushgateway metrics enabled", port.Fields{"url": cfg.Metrics.PushgatewayURL})
	}

	a.normalizeBacklogUC, err = usecase.NewNormalizeBacklogUseCase(
		sessions,
		parser,
		validator,
		pdftext.NewPDFTextAdapter(cfg.Pipeline.MaxDocumentBytes),
		metrics,
		reporter,
		usecase.NormalizeBacklogConfig{
			Policy:            cfg.Pipeline.SelectionPolicy,
			Limit:             cfg.Pipeline.BacklogLimit,
			ConflictKey:       cfg.Pipeline.ConflictKey,
			SchemaVersion:     cfg.Pipeline.SchemaVersion,
			RequireCoreFields: cfg.Pipeline.RequireCoreFields,
			StrictMode:        cfg.Pipeline.StrictMode,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create use case: %w", err)
	}
	appLogger.Info("All use cases initialized.", nil)
	return nil
}

func (a *App) wireReporter(baseLogger port.LoggerPort) (port.RunReporterPort, error) {
	url := a.config.RabbitMQ.URL

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: url}, connManagerBridge)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: url},
		ExchangeName:             constants.RunsExchange,
		ExchangeType:             constants.RunsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.eventProducer = producer
	a.logger.Info("RabbitMQ Event Producer initialized.", nil)

	return rabbitmq_adapter.NewRunReporterAdapter(producer, constants.RoutingKeyRunReports)
}

// Run executes one normalization pass and writes the coverage summary to stdout.
func (a *App) Run() error {
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextkeys.ContextWithLogger(ctx, a.logger)

	a.logger.Info("Normalization pass is starting...", port.Fields{
		"policy": string(a.config.Pipeline.SelectionPolicy),
		"limit":  a.config.Pipeline.BacklogLimit,
	})

	summary, runErr := a.normalizeBacklogUC.Execute(ctx)
	if summary != nil {
		if err := writeSummary(a.out, summary); err != nil {
			a.logger.Error("Failed to write coverage summary", err, nil)
		}
	}
	if runErr != nil {
		a.logger.Error("Normalization pass failed", runErr, nil)
		return runErr
	}
	return nil
}

func writeSummary(w io.Writer, summary *domain.RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func (a *App) close() {
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
