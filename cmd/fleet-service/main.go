package main

import (
	"fmt"
	"os"

	"fleet-service/internal/auth"
	"fleet-service/internal/config"
	"fleet-service/internal/db"
	httphandler "fleet-service/internal/http"
	"fleet-service/internal/http/middleware"
	"fleet-service/internal/ledger"
	"fleet-service/internal/logger"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
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

	actorRepo := repository.NewActorRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	driverRepo := repository.NewDriverRepository(database)
	tripRepo := repository.NewTripRepository(database)
	maintenanceRepo := repository.NewMaintenanceRepository(database)
	alertRepo := repository.NewAlertRepository(database)
	statusLogRepo := repository.NewStatusLogRepository(database)

	availabilityLedger := ledger.New()

	tokenManager := auth.NewTokenManager(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)
	loginLimiter := auth.NewLoginLimiter(cfg.Auth.RateWindow, cfg.Auth.RateMaxAttempts, cfg.Auth.RateMaxKeys)

	sessionService := service.NewSessionService(actorRepo, tokenManager, loginLimiter, service.SessionConfig{
		MaxFailedLogins: cfg.Auth.MaxFailedLogins,
		LockoutWindow:   cfg.Auth.LockoutWindow,
		ResetTokenTTL:   cfg.Auth.ResetTokenTTL,
	})
	tripService := service.NewTripService(database, tripRepo, vehicleRepo, driverRepo, statusLogRepo, availabilityLedger)
	maintenanceService := service.NewMaintenanceService(database, maintenanceRepo, vehicleRepo, statusLogRepo, availabilityLedger)
	alertService := service.NewAlertService(database, alertRepo, statusLogRepo)
	fleetService := service.NewFleetService(vehicleRepo, driverRepo)
	actorService := service.NewActorService(actorRepo)

	handler := httphandler.NewHandler(
		sessionService,
		tripService,
		maintenanceService,
		alertService,
		fleetService,
		actorService,
		log,
	)
	router := httphandler.NewRouter(handler, middleware.Auth(sessionService), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting fleet service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
