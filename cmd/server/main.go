package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/internal/infrastructure/config"
	"flight-tracker-service/internal/infrastructure/oauth"
	"flight-tracker-service/internal/infrastructure/persistence"
	"flight-tracker-service/internal/infrastructure/router"
	"flight-tracker-service/internal/interface/aviation"
	"flight-tracker-service/internal/interface/gmail"
	"flight-tracker-service/internal/interface/httpapi"
	repo "flight-tracker-service/internal/interface/repository"
	"flight-tracker-service/internal/usecase"
	"flight-tracker-service/pkg/logger"
	"flight-tracker-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Flight Tracker Service", "version", cfg.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("flight_tracker", prometheus.DefaultRegisterer)

	// Tracking state: MongoDB when configured, process memory otherwise
	var trackingRepo repository.TrackingRepository
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		defer persistence.Disconnect(mongoClient)

		trackingRepo = repo.NewMongoTrackingRepository(mongoClient.Database(cfg.MongoDB), cfg.MongoCollection, log)
	} else {
		log.Warn("MONGODB_DSN not set, tracked flights are kept in memory only")
		trackingRepo = repo.NewMemoryTrackingRepository(log)
	}

	// Airport reference table, optional
	var airportRepo repository.AirportRepository
	if cfg.PostgresURI != "" {
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		airportRepo = repo.NewGormAirportRepository(gormDB)
	}
	airports := repo.NewAirportDirectory(airportRepo, log)

	flightClient := aviation.NewClient(aviation.Config{
		APIKey:            cfg.AviationAPIKey,
		BaseURL:           cfg.AviationBaseURL,
		Timeout:           cfg.LookupTimeout,
		RequestsPerMinute: cfg.LookupRequestsPerMin,
	}, airports, m, log)

	// Notifications
	var notifier repository.Notifier
	if cfg.PushEndpoint != "" {
		notifier = repo.NewPushRepository(cfg.PushEndpoint, cfg.PushToken, log)
	} else {
		local := repo.NewLocalNotifier(nil, log)
		defer local.Stop()
		notifier = local
	}

	// E-mail
	var mailer repository.EmailSender
	if cfg.GmailEnabled() {
		gmailOAuth := oauth.NewGmailOAuth(
			cfg.GmailClientID,
			cfg.GmailClientSecret,
			cfg.GmailRedirectURL,
			cfg.GmailRefreshToken,
			log,
		)
		mailer, err = gmail.NewGmailService(ctx, gmailOAuth.TokenSource(ctx), cfg.GmailSender, log)
		if err != nil {
			log.Fatal("Failed to create Gmail service", "error", err)
		}
	} else {
		mailer = repo.NewLogEmailSender(log)
	}

	var home *entity.Coordinate
	if cfg.HasHomeCoordinate() {
		home = &entity.Coordinate{Latitude: *cfg.HomeLatitude, Longitude: *cfg.HomeLongitude}
	}
	location := repo.NewStaticLocationProvider(home)

	planner := usecase.NewReminderPlanner(usecase.PlannerConfig{
		TravelSpeedMPS:        cfg.TravelSpeedMPS,
		LeaveBuffer:           cfg.LeaveBuffer,
		DepartureReminderLead: cfg.DepartureReminderLead,
	})

	store := usecase.NewTrackingStore(
		flightClient,
		trackingRepo,
		notifier,
		mailer,
		location,
		usecase.NewChangeDetector(),
		planner,
		m,
		log,
	)
	store.SetRefreshConcurrency(cfg.RefreshConcurrency)

	if err := store.Load(ctx); err != nil {
		log.Error("Failed to restore tracking state, starting empty", "error", err)
	}

	scheduler := usecase.NewRefreshScheduler(store, cfg.RefreshInterval, log)
	scheduler.Start(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(log, prometheus.DefaultGatherer, httpapi.NewHandler(store, log)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
