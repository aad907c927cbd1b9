package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"carpool/internal/auth"
	"carpool/internal/cache"
	intconfig "carpool/internal/config"
	router "carpool/internal/http"
	"carpool/internal/http/handlers"
	"carpool/internal/http/ws"
	"carpool/internal/logger"
	"carpool/internal/notify"
	"carpool/internal/repositories"
	"carpool/internal/services"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	log := logger.New(env.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, env, log); err != nil {
		log.Error("server stopped with error", err)
		os.Exit(1)
	}
	log.Info("server stopped cleanly")
}

func run(ctx context.Context, env intconfig.Env, log logger.Logger) error {
	store, err := openStore(ctx, env, log)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	var c cache.Cache = cache.Noop{}
	if env.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, env.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "error", err.Error())
		} else {
			defer rc.Close()
			c = rc
		}
	}

	hub := ws.NewHub(log, env.CORSOrigins)
	publishers := services.Publishers{Targets: []services.EventPublisher{hub}, Log: log}

	var sender notify.Sender = notify.LogSender{Log: log}
	if env.AMQPURL != "" {
		mq, err := notify.DialAMQP(ctx, env.AMQPURL, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, notifications go to the log", "error", err.Error())
		} else {
			defer mq.Close()
			sender = mq
			publishers.Targets = append(publishers.Targets, mq)
		}
	}
	dispatcher := notify.NewDispatcher(sender, log, notify.DispatcherOptions{
		Workers:    env.NotifyWorkers,
		MaxRetries: env.NotifyMaxRetries,
	})

	bookings := services.BookingService{
		Store:    store,
		Events:   publishers,
		Notifier: dispatcher,
		Cache:    c,
		CacheTTL: env.CacheTTL,
		Log:      log,
	}
	rides := services.RideService{Store: store, Cache: c, CacheTTL: env.CacheTTL, Log: log}

	r := router.NewRouter(env, router.Deps{
		Handler: handlers.Handler{
			Bookings: bookings,
			Rides:    rides,
			Tickets:  services.TicketService{Bookings: bookings, Log: log},
			Log:      log,
		},
		Resolver: auth.NewVerifier(env.JWTSecret),
		Hub:      hub,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error {
		log.Info("server listening", "addr", env.AppAddr, "store", env.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, env intconfig.Env, log logger.Logger) (repositories.Store, error) {
	if env.StoreBackend == intconfig.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		return repositories.NewMemoryStore(), nil
	}

	db, err := intconfig.ConnectDB(env.DB)
	if err != nil {
		return nil, err
	}
	if err := intconfig.Migrate(ctx, db); err != nil {
		return nil, err
	}
	return &repositories.MySQLStore{DB: db, MaxRetries: env.TxMaxRetries}, nil
}
