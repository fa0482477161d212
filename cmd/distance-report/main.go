package main

import (
	"fmt"
	"os"

	"github.com/fleetops/distance-report/internal/auth"
	"github.com/fleetops/distance-report/internal/config"
	"github.com/fleetops/distance-report/internal/db"
	"github.com/fleetops/distance-report/internal/excel"
	httphandler "github.com/fleetops/distance-report/internal/http"
	"github.com/fleetops/distance-report/internal/http/middleware"
	"github.com/fleetops/distance-report/internal/logger"
	"github.com/fleetops/distance-report/internal/pdf"
	"github.com/fleetops/distance-report/internal/repository"
	"github.com/fleetops/distance-report/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	tripRepo := repository.NewTripRepository(database)
	reportRepo := repository.NewReportRepository(database)

	logo := pdf.NewFileLogo(cfg.Report.LogoPath)
	if _, err := logo.Logo(); err != nil {
		log.Warn().Err(err).Str("path", cfg.Report.LogoPath).Msg("report logo not loaded, pdf generation will fail until it is available")
	}
	pdfGenerator, err := pdf.NewGenerator(logo, pdf.NewQRCode())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	recordService := service.NewRecordService(tripRepo, log)
	reportService := service.NewReportService(tripRepo, reportRepo, pdfGenerator, excel.NewGenerator(), cfg, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(recordService, reportService, cfg.HTTP.UploadMaxBytes, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting distance report service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
