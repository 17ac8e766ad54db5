package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelos/internal/adapters/auth"
	server "hotelos/internal/adapters/http_server"
	"hotelos/internal/adapters/observability"
	redisad "hotelos/internal/adapters/redis"
	"hotelos/internal/app"
	"hotelos/internal/shared"
	mysqlrepo "hotelos/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	if cfg.AutoMigrate {
		if err := mysqlrepo.RunMigrations(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		log.Info().Msg("migrations up to date")
	}

	// deps
	repo := mysqlrepo.New(db, cfg.TxTimeout)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx); err != nil {
			// The cache is an accelerator, not a dependency; reads fall
			// through to MySQL when it is down.
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		} else {
			log.Info().Msg("redis connection ok")
		}
		cancel()
	}
	verifier := auth.NewVerifier(cfg.JWTSecret)

	checkIn := app.NewCheckInService(repo, cache)
	checkOut := app.NewCheckOutService(repo, repo, cache)
	queries := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New(cfg.RateRPS)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(server.NewHandlers(checkIn, checkOut, queries), verifier)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("front-desk API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
