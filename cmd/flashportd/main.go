// Command flashportd runs the game engine as an HTTP service backed by a
// SQLite database.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/PhanTom497/Flashport/internal/api"
	"github.com/PhanTom497/Flashport/internal/game"
	"github.com/PhanTom497/Flashport/internal/store"
)

type config struct {
	Addr          string        `env:"FLASHPORT_ADDR" envDefault:":8080"`
	DBPath        string        `env:"FLASHPORT_DB_PATH" envDefault:"flashport.db"`
	MaxSessionTTL time.Duration `env:"FLASHPORT_SESSION_MAX_TTL" envDefault:"24h"`
}

func main() {
	logger := log.New(os.Stdout, "[FLASHPORT] ", log.LstdFlags|log.Lshortfile)

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Fatalf("config_error error=%q", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatalf("store_open_failed path=%s error=%q", cfg.DBPath, err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatalf("migrate_failed error=%q", err)
	}

	controller := game.NewController(db, logger, game.Config{
		MaxSessionTTL: cfg.MaxSessionTTL,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewServer(controller, logger).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Printf("server_starting addr=%s db=%s", cfg.Addr, cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server_failed error=%q", err)
		}
	}()

	<-shutdown
	logger.Printf("server_stopping")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("shutdown_error error=%q", err)
	}
}
