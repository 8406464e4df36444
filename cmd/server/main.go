package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/config"
	"github.com/evlats/bookable/internal/database"
	"github.com/evlats/bookable/internal/handler"
	"github.com/evlats/bookable/internal/queue"
	"github.com/evlats/bookable/internal/repository"
	"github.com/evlats/bookable/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	clock := booking.UTCClock{}

	availRepo := repository.NewAvailabilityRepo(db)
	serviceRepo := repository.NewServiceRepo(db)
	providerRepo := repository.NewProviderRepo(db)
	apptRepo := repository.NewAppointmentRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	var holds booking.HoldStore
	switch cfg.HoldStore {
	case "memory":
		// Single-instance deployments only; holds die with the process.
		holds = repository.NewMemoryHoldRepo(clock)
	default:
		holds = repository.NewHoldRepo(db, clock)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, schedule caching disabled")
	}
	resolver := repository.NewScheduleCache(booking.NewResolver(availRepo), rdb, cfg.ScheduleCacheTTL, log.Logger)

	core := booking.NewCore(serviceRepo, providerRepo, resolver, apptRepo, holds, paymentRepo, clock)

	appts := handler.NewAppointmentHandler(core, apptRepo)
	avail := handler.NewAvailabilityHandler(availRepo, resolver)

	// Consume booked events into the appointment log. Runs until the process
	// exits; broker outages are retried inside.
	go func() {
		if err := queue.StartAppointmentConsumer(); err != nil {
			log.Error().Err(err).Msg("appointment consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	router.RegisterRoutes(e, appts)
	router.RegisterBooking(e, appts, avail, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
