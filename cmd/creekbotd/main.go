package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"creekbot/bot"
	"creekbot/config"
	"creekbot/observability/logging"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "creekbot.toml", "path to creekbot config")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("CREEKBOT_ENV"))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.Setup("creekbotd", env, logging.Options{
		FilePath: cfg.LogFile,
		Debug:    cfg.Debug,
	})

	plan, err := config.LoadActivity(cfg.ActivityFile)
	if err != nil {
		log.Fatalf("load activity plan: %v", err)
	}
	keys, err := config.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		log.Fatalf("load accounts: %v", err)
	}
	proxies, err := config.LoadProxies(cfg.ProxyFile)
	if err != nil {
		log.Fatalf("load proxies: %v", err)
	}
	accounts, err := bot.BuildAccounts(keys, proxies)
	if err != nil {
		log.Fatalf("build accounts: %v", err)
	}
	logger.Info("accounts loaded", "accounts", len(accounts), "proxies", len(proxies))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listener started", "addr", cfg.MetricsAddress)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	scheduler := bot.NewScheduler(cfg, plan, accounts, logger)
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler exited", "error", err)
		os.Exit(1)
	}
	logger.Info("creekbotd stopped")
}
