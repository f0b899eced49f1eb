package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/squarefactory/slurm-api/api"
	"github.com/squarefactory/slurm-api/executor"
	"github.com/squarefactory/slurm-api/logger"
	"github.com/squarefactory/slurm-api/scheduler"
)

func main() {
	_ = godotenv.Load()

	logger.InitProduction()
	log := logger.Get()
	defer log.Sync() //nolint:errcheck

	var cfg executor.Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		var err error
		cfg, err = executor.LoadConfig(configPath)
		if err != nil {
			log.Fatal("failed to load config", logger.Error(err))
		}
	} else {
		cfg = executor.ConfigFromEnv()
	}

	session := executor.NewSSH(cfg)
	slurm := scheduler.NewSlurm(session)
	handler := api.NewHandler(cfg, session, slurm)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	handler.Register(r)

	listenAddress := os.Getenv("LISTEN_ADDRESS")
	if len(listenAddress) == 0 {
		listenAddress = ":8080"
	}

	srv := &http.Server{
		Addr:              listenAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", logger.String("addr", listenAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", logger.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", logger.Error(err))
	}
	if err := session.Disconnect(); err != nil {
		log.Error("disconnect failed", logger.Error(err))
	}
}
