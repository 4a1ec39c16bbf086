package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/investtrack-backend/internal/adapter/httpapi"
	"github.com/simaogato/investtrack-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/investtrack-backend/internal/config"
	"github.com/simaogato/investtrack-backend/internal/usecase/assettype"
	"github.com/simaogato/investtrack-backend/internal/usecase/importer"
	"github.com/simaogato/investtrack-backend/internal/usecase/investment"
	"github.com/simaogato/investtrack-backend/internal/usecase/metrics"
	"github.com/simaogato/investtrack-backend/internal/usecase/seeder"
	"github.com/simaogato/investtrack-backend/internal/usecase/snapshot"
	"github.com/simaogato/investtrack-backend/pkg/logger"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	// 2. Setup database
	db, err := postgres.NewDB(cfg.ConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// 3. Initialize repositories
	assetRepo := postgres.NewAssetRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	typeRepo := postgres.NewInvestmentTypeRepository(db)

	// 4. Initialize services
	investmentService := investment.NewInvestmentService(assetRepo, eventRepo, typeRepo)
	snapshotService := snapshot.NewService(eventRepo)
	metricsService := metrics.NewService(assetRepo, eventRepo)
	typeService := assettype.NewTypeService(typeRepo)
	importerService := importer.NewService(assetRepo, eventRepo, log)

	// Seed the default investment types
	typeSeeder := seeder.NewTypeSeeder(typeRepo)
	if err := typeSeeder.Seed(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed investment types")
	}
	log.Info().Msg("Investment types seeded")

	// 5. Start HTTP server
	server := httpapi.New(httpapi.Config{
		Port:     cfg.Port,
		APIToken: cfg.APIToken,
		Log:      log,
		DevMode:  cfg.DevMode,

		InvestmentService: investmentService,
		SnapshotService:   snapshotService,
		MetricsService:    metricsService,
		TypeService:       typeService,
		ImporterService:   importerService,
		LedgerRepo:        ledgerRepo,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	waitForShutdown(server, log)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *httpapi.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Server stopped")
}
