// sync-worker runs the out-of-band catalog sync jobs once and exits. It is
// meant to be invoked by a scheduler; run at most one instance of each job
// at a time.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"freestream-server/internal/adapter"
	"freestream-server/internal/config"
	"freestream-server/internal/jobs"
	"freestream-server/internal/migrate"
	"freestream-server/internal/repos"
	pkgcatalog "freestream-server/pkg/catalog"
	pkgdb "freestream-server/pkg/db"
)

func main() {
	seedServices := flag.Bool("seed-services", false, "bootstrap the service catalog from the /countries endpoint")
	sweep := flag.Bool("sweep", false, "run the full-catalog seeder")
	update := flag.Bool("update", false, "run the incremental updater")
	flag.Parse()

	if !*seedServices && !*sweep && !*update {
		log.Fatal().Msg("nothing to do: pass -seed-services, -sweep, and/or -update")
	}

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

	blacklist, err := config.LoadBlacklist(cfg.BlacklistFile)
	if err != nil {
		log.Fatal().Err(err).Msg("blacklist load failed")
	}

	if cfg.RapidAPIKey == "" {
		log.Fatal().Msg("RAPID_API_KEY is required for sync jobs")
	}
	client := pkgcatalog.New(cfg.RapidAPIKey)
	if cfg.CatalogBaseURL != "" {
		client.BaseURL = cfg.CatalogBaseURL
	}

	repository := repos.New(pool)
	xform := adapter.New(adapter.Config{BlacklistedServices: blacklist})

	if *seedServices {
		if err := jobs.SeedServices(ctx, repository, client, blacklist); err != nil {
			log.Fatal().Err(err).Msg("service catalog bootstrap failed")
		}
	}
	if *sweep {
		seeder := jobs.NewSeeder(repository, client, xform, cfg.CursorFile, cfg.RequestsPerSecond)
		if err := seeder.SweepAll(ctx); err != nil {
			log.Fatal().Err(err).Msg("catalog sweep failed")
		}
	}
	if *update {
		updater := jobs.NewUpdater(repository, client, xform, cfg.WatermarkFile, cfg.DailyRequestQuota)
		if err := updater.SyncUpdates(ctx); err != nil {
			log.Fatal().Err(err).Msg("update run failed")
		}
	}
	log.Info().Msg("sync worker done")
}
