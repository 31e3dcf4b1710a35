// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"breeze/internal/auth"
	"breeze/internal/config"
	httptransport "breeze/internal/http"
	"breeze/internal/infra"
	"breeze/internal/logging"
	"breeze/internal/maps"
	"breeze/internal/modules/account"
	"breeze/internal/modules/catalog"
	"breeze/internal/modules/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier := infra.NewGoogleVerifier(cfg.Auth.GoogleClientID)

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := infra.RunMigrations(ctx, dbPool); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var routeSvc *maps.RouteService
	if cfg.Maps.APIKey != "" {
		routeSvc, err = maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
	}

	accountStore := account.NewStore(dbPool)
	accountSvc := account.NewService(accountStore, verifier, cfg.Auth.EnforceAllowList)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, accountSvc)

	catalogStore := catalog.NewStore(dbPool, redisClient)
	catalogSvc := catalog.NewService(catalogStore)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Accounts:      accountSvc,
		Orders:        orderSvc,
		Catalog:       catalogSvc,
		Routes:        routeSvc,
		Session:       auth.Config{Secret: cfg.Auth.JWTSecret, TTL: cfg.Auth.SessionTTL},
		WarehouseAddr: cfg.Maps.WarehouseAddr,
		Logger:        logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	logger.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
