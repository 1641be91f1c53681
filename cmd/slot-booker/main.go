package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slotBooker/internal/config"
	"slotBooker/internal/http-server/handlers/booking/createBooking"
	"slotBooker/internal/http-server/handlers/booking/decideBooking"
	"slotBooker/internal/http-server/handlers/booking/deleteBooking"
	"slotBooker/internal/http-server/handlers/booking/getBooking"
	"slotBooker/internal/http-server/handlers/booking/listBookings"
	"slotBooker/internal/http-server/handlers/booking/updateBooking"
	"slotBooker/internal/http-server/handlers/booking/verifyBooking"
	"slotBooker/internal/http-server/middleware/mwlogger"
	"slotBooker/internal/http-server/middleware/mwmetrics"
	"slotBooker/internal/lib/logger/handlers/slogpretty"
	"slotBooker/internal/lib/logger/sl"
	"slotBooker/internal/mail"
	"slotBooker/internal/metrics"
	"slotBooker/internal/services/booking"
	"slotBooker/internal/storage/postgres"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting slot booker", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	initCtx, cancelInit := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	storage, err := postgres.InitDB(initCtx, &cfg.Database)
	cancelInit()
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err = storage.Migrate(context.Background()); err != nil {
		log.Error("failed to migrate storage", sl.Err(err))
		os.Exit(1)
	}

	metrics.Init(prometheus.DefaultRegisterer)

	bookings := booking.New(log, storage, setupSender(log, cfg.Mail), booking.Config{
		SiteURL:    cfg.SiteURL,
		TokenTTL:   cfg.Booking.TokenTTL,
		StaleAfter: cfg.Booking.StaleAfter,
	})

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(mwmetrics.New)
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Route("/bookings", func(r chi.Router) {
		r.Post("/", createBooking.New(log, bookings))
		r.Get("/", listBookings.New(log, bookings))
		r.Get("/{id}", getBooking.New(log, bookings))
		r.Patch("/{id}", updateBooking.New(log, bookings))
		r.Delete("/{id}", deleteBooking.New(log, bookings))
		r.Post("/{id}/decision", decideBooking.New(log, bookings))
	})
	router.Get("/verify/{token}", verifyBooking.New(log, bookings))
	router.Handle("/metrics", promhttp.Handler())

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})

	go func() {
		defer close(sweepDone)
		runSweeper(sweepCtx, log, bookings, cfg.Booking.SweepInterval)
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	cancelSweep()
	<-sweepDone

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close postgres connection", sl.Err(err))
	}

	log.Info("postgres connection closed")
}

type stalePurger interface {
	PurgeStale(ctx context.Context) (int64, error)
}

// runSweeper removes stale unverified bookings until ctx is cancelled.
func runSweeper(ctx context.Context, log *slog.Logger, purger stalePurger, interval time.Duration) {
	if interval <= 0 {
		log.Info("stale booking sweeper disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := purger.PurgeStale(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("failed to purge stale bookings", sl.Err(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func setupSender(log *slog.Logger, cfg config.Mail) booking.Sender {
	if cfg.Host == "" {
		log.Warn("smtp host is not set, emails will only be logged")
		return mail.NewLogSender(log)
	}

	return mail.NewSMTPSender(cfg)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
