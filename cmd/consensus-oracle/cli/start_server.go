package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stakequorum/consensus-oracle/internal/api"
	"github.com/stakequorum/consensus-oracle/internal/config"
	"github.com/stakequorum/consensus-oracle/internal/db"
	dbmodel "github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
	"github.com/stakequorum/consensus-oracle/internal/observability/tracing"
	"github.com/stakequorum/consensus-oracle/internal/queue"
	"github.com/stakequorum/consensus-oracle/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the consensus oracle server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up oracle db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	// Create a basic zap logger for the queue subsystem
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating zap logger")
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			log.Fatal().Err(err).Msg("error while syncing zap logger")
		}
	}()

	queueManager, err := queue.NewQueueManager(&cfg.Queue, zapLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize queue manager")
	}

	service := services.NewService(cfg, dbClient, queueManager, queueManager)

	apiServer := api.New(&cfg.Api, service)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("api server failed")
		}
	}()

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	service.StartOracleService(ctx)
	return nil
}
