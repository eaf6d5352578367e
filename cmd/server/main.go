package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/planshop/internal/adapter/httpapi"
	"github.com/example/planshop/internal/adapter/natsstan"
	"github.com/example/planshop/internal/adapter/repo"
	"github.com/example/planshop/internal/config"
	"github.com/example/planshop/internal/notify"
	"github.com/example/planshop/internal/obs"
	"github.com/example/planshop/internal/slot"
	"github.com/example/planshop/internal/usecase"
)

func main() {
	obs.InitLogger()
	log := obs.Logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("open slot store")
	}
	defer closeStore()

	hub := notify.NewHub()
	if cfg.StanEnabled {
		pub, err := natsstan.NewPublisher(cfg.StanClusterID, cfg.StanClientID, cfg.NatsURL, cfg.StanSubject)
		if err != nil {
			log.WithError(err).Fatal("stan connect")
		}
		defer pub.Close()
		hub.Subscribe(pub.CartChanged)
	}

	catalog := usecase.NewCatalog(store)
	cart := usecase.NewCart(store, hub)
	checkout := usecase.NewCheckout(store, catalog, cart, usecase.UnresolvedLinePolicy(cfg.UnresolvedLine))
	orders := usecase.NewOrders(store)

	if err := catalog.EnsureSeeded(ctx); err != nil {
		log.WithError(err).Fatal("seed catalog")
	}

	api := httpapi.NewServer(catalog, cart, checkout, orders)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Router}
	go func() {
		log.WithField("addr", srv.Addr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config) (slot.Store, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo.NewPostgresSlotStore(pool), pool.Close, nil
	case "memory":
		return slot.NewMemory(), func() {}, nil
	default:
		s, err := repo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
}
