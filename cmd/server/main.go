package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CuongBC195/vuivengaytet/internal/auth"
	"github.com/CuongBC195/vuivengaytet/internal/cache"
	"github.com/CuongBC195/vuivengaytet/internal/config"
	"github.com/CuongBC195/vuivengaytet/internal/database"
	"github.com/CuongBC195/vuivengaytet/internal/game"
	"github.com/CuongBC195/vuivengaytet/internal/server"
	"github.com/CuongBC195/vuivengaytet/internal/store"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	log := logrus.NewEntry(logger)

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		log.WithError(err).Fatal("invalid SESSION_TTL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("ensure schema")
	}

	rdb, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("connect redis")
	}
	defer rdb.Close()

	st := store.New(pool)
	pub := cache.NewPublisher(rdb)
	issuer := auth.NewIssuer(cfg.JWTSecret, sessionTTL)
	rooms := game.NewRooms(st, st, pub, log)
	xidach := game.NewXiDach(st, pub, log)
	lotoSvc := game.NewLoto(st, pub, log)

	srv := server.New(log, issuer, rooms, xidach, lotoSvc, rdb, cfg.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
