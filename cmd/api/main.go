package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/MedCore-Microservices/clinic-api/internal/config"
	"github.com/MedCore-Microservices/clinic-api/internal/email"
	appointmentHandler "github.com/MedCore-Microservices/clinic-api/internal/handler/appointment"
	authHandler "github.com/MedCore-Microservices/clinic-api/internal/handler/auth"
	healthHandler "github.com/MedCore-Microservices/clinic-api/internal/handler/health"
	scheduleHandler "github.com/MedCore-Microservices/clinic-api/internal/handler/schedule"
	"github.com/MedCore-Microservices/clinic-api/internal/middleware"
	"github.com/MedCore-Microservices/clinic-api/internal/repository/postgres"
	"github.com/MedCore-Microservices/clinic-api/internal/router"
	appointmentService "github.com/MedCore-Microservices/clinic-api/internal/service/appointment"
	authService "github.com/MedCore-Microservices/clinic-api/internal/service/auth"
	eventService "github.com/MedCore-Microservices/clinic-api/internal/service/event"
	scheduleService "github.com/MedCore-Microservices/clinic-api/internal/service/schedule"
	"github.com/MedCore-Microservices/clinic-api/pkg/auth"
	"github.com/MedCore-Microservices/clinic-api/pkg/metrics"
	"github.com/MedCore-Microservices/clinic-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := validator.RegisterCustomValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	eventSvc := eventService.NewService(outboxRepo)
	emailSvc := email.NewGomailService(cfg.SMTP)
	jwtSvc := auth.NewJWTService(cfg.JWT)
	authSvc := authService.NewService(userRepo, tokenRepo, jwtSvc, emailSvc)
	scheduleSvc := scheduleService.NewService(scheduleRepo, appointmentRepo, userRepo, eventSvc, cfg.Schedule)
	appointmentSvc := appointmentService.NewService(appointmentRepo, userRepo, eventSvc)

	// Handlers
	authH := authHandler.NewHandler(authSvc)
	scheduleH := scheduleHandler.NewHandler(scheduleSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	healthH := healthHandler.NewHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	m := metrics.NewMetrics("clinic", "api")

	r := router.NewRouter(
		authMiddleware,
		authH,
		scheduleH,
		appointmentH,
		healthH,
		router.RouterConfig{
			RateLimit: rate.Limit(100),
			RateBurst: 200,
			CORS:      middleware.DefaultCORSConfig(),
			Metrics:   m,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
