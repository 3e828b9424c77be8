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

	"ticketBooker/internal/clock"
	"ticketBooker/internal/config"
	"ticketBooker/internal/http-server/handlers/booking/cancelBooking"
	"ticketBooker/internal/http-server/handlers/booking/checkBooking"
	"ticketBooker/internal/http-server/handlers/booking/createBooking"
	"ticketBooker/internal/http-server/handlers/booking/getBooking"
	"ticketBooker/internal/http-server/handlers/booking/getEventBookings"
	"ticketBooker/internal/http-server/handlers/booking/getUserBookings"
	"ticketBooker/internal/http-server/handlers/event/createEvent"
	"ticketBooker/internal/http-server/handlers/event/deleteEvent"
	"ticketBooker/internal/http-server/handlers/event/getAllEvents"
	"ticketBooker/internal/http-server/handlers/event/getEvent"
	"ticketBooker/internal/http-server/handlers/event/updateEvent"
	"ticketBooker/internal/http-server/middleware/mwlogger"
	"ticketBooker/internal/lib/logger/handlers/slogpretty"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/service"
	"ticketBooker/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting ticket booker", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.InitDB(&cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	clk := clock.NewSystem()
	events := service.NewEventService(storage, clk)
	bookings := service.NewBookingService(storage, clk)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Route("/events", func(r chi.Router) {
		r.Post("/", createEvent.New(log, events))
		r.Get("/", getAllEvents.New(log, events))
		r.Get("/{id}", getEvent.New(log, events))
		r.Put("/{id}", updateEvent.New(log, events))
		r.Delete("/{id}", deleteEvent.New(log, events))
	})

	router.Route("/bookings", func(r chi.Router) {
		r.Post("/", createBooking.New(log, bookings))
		r.Get("/check", checkBooking.New(log, bookings))
		r.Get("/{id}", getBooking.New(log, bookings))
		r.Delete("/{id}", cancelBooking.New(log, bookings))
		r.Get("/user/{userId}", getUserBookings.New(log, bookings))
		r.Get("/event/{eventId}", getEventBookings.New(log, bookings))
	})

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

	go func() {
		if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close postgres connection", sl.Err(err))
	}

	log.Info("postgres connection closed")
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
