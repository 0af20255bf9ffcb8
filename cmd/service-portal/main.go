package main

import (
	"context"
	"fmt"
	"os"

	"service-portal/internal/auth"
	"service-portal/internal/config"
	"service-portal/internal/db"
	httphandler "service-portal/internal/http"
	"service-portal/internal/http/middleware"
	"service-portal/internal/logger"
	"service-portal/internal/repository"
	"service-portal/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	userRepo := repository.NewUserRepository(database)
	catalogRepo := repository.NewCatalogRepository(database)
	emergencyRepo := repository.NewEmergencyRepository(database)
	complaintRepo := repository.NewComplaintRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)

	limit := cfg.List.DefaultLimit
	services := httphandler.Services{
		Accounts:    service.NewAccountService(userRepo, auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL), cfg.Auth.AccessCodes),
		Catalog:     service.NewCatalogService(catalogRepo),
		Emergencies: service.NewEmergencyService(userRepo, catalogRepo, emergencyRepo, vehicleRepo, limit),
		Complaints:  service.NewComplaintService(userRepo, catalogRepo, complaintRepo, limit),
		Vehicles:    service.NewVehicleService(vehicleRepo, limit),
		Dashboards:  service.NewDashboardService(emergencyRepo, complaintRepo, vehicleRepo),
		Reports:     service.NewReportService(emergencyRepo, complaintRepo),
		Ping: func(ctx context.Context) error {
			return db.HealthCheck(ctx, database)
		},
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(services, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting service portal")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
