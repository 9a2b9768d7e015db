package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ladderbot/internal/config"
	"ladderbot/internal/engine"
	"ladderbot/internal/exchange"
	"ladderbot/internal/exchange/upbit/rest"
	"ladderbot/internal/exchange/upbit/ws"
	"ladderbot/internal/executor"
	"ladderbot/internal/logger"
	"ladderbot/internal/metrics"
	"ladderbot/internal/store"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Runtime.Log)
	log.Info("Bot started.")

	client := rest.New(cfg.Exchange.BaseURL, cfg.Exchange.AccessKey, cfg.Exchange.SecretKey, cfg.Exchange.RequestTimeout, log)
	client.SetBatchSize(cfg.Bot.OrderBatchSize)

	var prices exchange.PriceSource
	if cfg.Exchange.PriceSource == config.PriceSourceWS {
		prices = ws.New(cfg.Exchange.WSURL, cfg.Exchange.RequestTimeout, log)
	}

	var persister executor.Persister
	if cfg.Store.Driver != "none" {
		st, err := store.Open(cfg.Store)
		if err != nil {
			log.WithError(err).Fatal("Store is unavailable.")
		}
		defer st.Close()
		persister = st
	}

	m := metrics.New()
	var srv *http.Server
	if cfg.Runtime.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv = &http.Server{Addr: cfg.Runtime.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server stopped.")
			}
		}()
	}

	exec := executor.New(client, persister, log, m, executor.Options{
		MinNotional:   cfg.Bot.MinNotional,
		PersistPolicy: cfg.Bot.PersistPolicy,
	})
	eng := engine.New(cfg, client, prices, exec, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := eng.Start(ctx); err != nil {
			log.WithError(err).Error("Engine exited with an error.")
		}
	}()

	select {
	case <-sigCh:
	case <-done:
	}
	cancel()
	<-done

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}

	log.Info("Bot stopped.")
}
