package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yashubustudio/entityclassifier/entity"
	"yashubustudio/entityclassifier/internal/config"
	"yashubustudio/entityclassifier/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config.json or config.toml (default: ./config.json)")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	if err := run(*configPath, logger); err != nil {
		log.Fatalf("entity-server: %v", err)
	}
}

func run(configPath string, logger *log.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rules, loaded, err := entity.LoadRuleSet(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	if loaded {
		logger.Printf("loaded %d language groups from %s", len(rules.Languages), cfg.RulesPath)
	}

	srv := server.New(server.Options{
		DataDir:   cfg.DataDir,
		StaticDir: cfg.StaticDir,
		Mock:      cfg.Mock,
		MockSeed:  cfg.MockSeed,
		CacheTTL:  cfg.CacheTTL(),
	}, entity.NewClassifier(rules), logger)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Printf("listening on %s, data directory %s", cfg.ListenAddr, cfg.DataDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Printf("shutting down on %s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
