// merlin-pricing API server entry point
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	v1 "merlin-pricing/api/v1"
	"merlin-pricing/core/policy"
	"merlin-pricing/internal/config"
	"merlin-pricing/internal/logging"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logging.Fatal("loading config", zap.Error(err))
	}
	config.Set(cfg)
	if err := logging.Initialize(cfg.Logging); err != nil {
		logging.Fatal("initializing logging", zap.Error(err))
	}
	defer logging.Sync()

	policyCfg := policy.DefaultPolicyConfig()
	if cfg.PolicyFile != "" {
		policyCfg, err = policy.LoadFile(cfg.PolicyFile)
		if err != nil {
			logging.Fatal("loading policy tables", zap.Error(err))
		}
	}
	store, err := policy.NewPolicyStore(policyCfg)
	if err != nil {
		logging.Fatal("invalid policy tables", zap.Error(err))
	}

	// SIGHUP reloads the policy file through an atomic snapshot swap
	if cfg.PolicyFile != "" {
		go reloadOnSignal(store, cfg.PolicyFile)
	}

	mux := http.NewServeMux()
	v1.NewHandler(store, nil).RegisterRoutes(mux)

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}
	server := &http.Server{
		Addr:         listenAddr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logging.Info("pricing server listening",
			zap.String("addr", listenAddr),
			zap.String("policy_version", policyCfg.Version))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error("shutdown error", zap.Error(err))
	}
	logging.Info("pricing server stopped")
}

func reloadOnSignal(store *policy.PolicyStore, path string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for range hup {
		cfg, err := policy.LoadFile(path)
		if err != nil {
			logging.Error("policy reload rejected", zap.Error(err))
			continue
		}
		if err := store.Swap(cfg); err != nil {
			logging.Error("policy reload rejected", zap.Error(err))
		}
	}
}
