package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"freestream-server/internal/adapter"
	"freestream-server/internal/config"
	"freestream-server/internal/deps"
	"freestream-server/internal/migrate"
	"freestream-server/internal/repos"
	"freestream-server/internal/server"
	"freestream-server/pkg/cache"
	pkgcatalog "freestream-server/pkg/catalog"
	pkgdb "freestream-server/pkg/db"
	"freestream-server/pkg/signer"
)

func main() {
	_ = godotenv.Load() // best-effort
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pkgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	if err := migrate.Up(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var c cache.Cache
	if addr := cfg.ValkeyAddr; addr != "" {
		vc, err := cache.NewValkey(addr, cfg.ValkeyPassword)
		if err != nil {
			log.Error().Err(err).Msg("valkey connect failed, using in-memory cache")
			c = cache.NewInMemory()
		} else {
			c = vc
		}
	} else {
		c = cache.NewInMemory()
	}

	blacklist, err := config.LoadBlacklist(cfg.BlacklistFile)
	if err != nil {
		log.Fatal().Err(err).Msg("blacklist load failed")
	}

	var catalogClient *pkgcatalog.Client
	if cfg.RapidAPIKey != "" {
		catalogClient = pkgcatalog.New(cfg.RapidAPIKey)
		if cfg.CatalogBaseURL != "" {
			catalogClient.BaseURL = cfg.CatalogBaseURL
		}
	} else {
		log.Warn().Msg("catalog API key not configured; upstream-backed routes will error")
	}

	api := server.New(deps.ServerDeps{
		Repo:      repos.New(pool),
		Cache:     c,
		Signer:    signer.NewHMAC(cfg.CursorSecret),
		Catalog:   catalogClient,
		Transform: adapter.New(adapter.Config{BlacklistedServices: blacklist}),
		Name:      "freestream-server",
		StartedAt: time.Now().UTC(),
	}, cfg.CORSAllowedOrigins)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := server.StartHTTP(ctx, addr, api.Router()); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	_, _ = fmt.Fprintln(os.Stderr, "shutting down...")
	time.Sleep(200 * time.Millisecond)
}
