package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayush3323/crm-backend/internal/config"
	"github.com/Ayush3323/crm-backend/internal/infra"
	"github.com/Ayush3323/crm-backend/internal/router"
	"github.com/Ayush3323/crm-backend/internal/worker"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	_, logCloser := infra.NewLogger(cfg)
	defer logCloser.Close()

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	if cfg.DBAutoMigrate || cfg.DBDriver == infra.DriverMySQL {
		if err := infra.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate schema")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// Notification workers are wired here so the pool owns the SMTP mailer.
	var mailer *infra.Mailer
	if cfg.MailEnabled() {
		mailer = infra.NewMailer(cfg)
		pool := worker.NewPool(rdb, map[string]worker.Handler{
			worker.QueueEmail: worker.NewEmailWorker(mailer),
		})
		pool.Start(ctx, cfg.WorkerPoolSize)
	} else {
		log.Warn().Msg("SMTP_HOST not set, email notifications disabled")
	}

	r := router.New(cfg, db, rdb, mailer)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("CRM backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
