// Package main is the entry point for the bond ladder planning tool. It
// wires the quote cache, market data client, planning service and HTTP
// server, then serves the interactive form and its API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jraitt/FinancialLadder/internal/clientdata"
	"github.com/jraitt/FinancialLadder/internal/clients/yahoo"
	"github.com/jraitt/FinancialLadder/internal/config"
	"github.com/jraitt/FinancialLadder/internal/database"
	"github.com/jraitt/FinancialLadder/internal/domain"
	"github.com/jraitt/FinancialLadder/internal/modules/charts"
	"github.com/jraitt/FinancialLadder/internal/modules/ladder"
	ladderhandlers "github.com/jraitt/FinancialLadder/internal/modules/ladder/handlers"
	"github.com/jraitt/FinancialLadder/internal/modules/marketdata"
	"github.com/jraitt/FinancialLadder/internal/scheduler"
	"github.com/jraitt/FinancialLadder/internal/server"
	"github.com/jraitt/FinancialLadder/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("universe", cfg.FundUniverse).Msg("Starting Financial Ladder")

	universe, err := domain.UniverseByName(cfg.FundUniverse)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid fund universe configuration")
	}

	// Quote cache database. Losing it is harmless - the next fetch or the
	// static fallback constants cover every fund.
	cacheDB, err := database.New(database.Config{
		Path: cfg.CacheDBPath(),
		Name: "client_data",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open quote cache database")
	}
	defer cacheDB.Close()

	cacheRepo := clientdata.NewRepository(cacheDB.Conn())
	yahooClient := yahoo.NewClient(cacheRepo, cfg.QuoteCacheTTL, log)
	metricsService := marketdata.NewService(yahooClient, log)

	chartService := charts.NewService(log)
	ladderService := ladder.NewService(universe, metricsService, chartService, log)

	// Background quote refresh keeps plan requests off the network.
	sched := scheduler.New(log)
	if cfg.RefreshSchedule != "" {
		refreshJob := marketdata.NewRefreshJob(yahooClient, cacheRepo, universe, log)
		if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register quote refresh job")
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:            log,
		Config:         cfg,
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		LadderHandlers: ladderhandlers.NewHandler(ladderService, log),
		SystemHandlers: server.NewSystemHandlers(log),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Financial Ladder stopped")
}
