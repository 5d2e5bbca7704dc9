package jobs

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"freestream-server/internal/adapter"
	"freestream-server/internal/bookmarks"
)

// Seeder walks the upstream's paged catalog-by-filter endpoint once per
// country until exhaustion, persisting a resumable page cursor after every
// successful page and batching all writes into one commit at the end of the
// run. The cursor file provides resumability independent of the commit
// boundary, so an interrupted run loses at most one in-flight page.
type Seeder struct {
	store      Store
	client     Catalog
	xform      *adapter.Transformer
	limiter    *rate.Limiter
	cursorFile string
}

// NewSeeder builds a seeder pacing its requests at perSecond, the upstream's
// documented per-second rate limit.
func NewSeeder(store Store, client Catalog, xform *adapter.Transformer, cursorFile string, perSecond int) *Seeder {
	return &Seeder{
		store:      store,
		client:     client,
		xform:      xform,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), perSecond),
		cursorFile: cursorFile,
	}
}

// SweepAll seeds movies, posters, and streaming options for every country
// with at least one configured service. An upstream failure stops only that
// country for this run; accumulated entities are committed once at the end
// either way.
func (s *Seeder) SweepAll(ctx context.Context) error {
	countryServices, err := s.store.CountryServiceIDs(ctx)
	if err != nil {
		return err
	}
	cursors, err := bookmarks.LoadCursors(s.cursorFile)
	if err != nil {
		return err
	}

	batch := adapter.NewBatch()
	var runErr error

sweep:
	for _, country := range sortedCountries(countryServices) {
		serviceIDs := countryServices[country]
		cursor := cursors[country]
		if cursor == bookmarks.CursorEnd {
			log.Debug().Str("country", country).Msg("catalog already fully swept, skipping")
			continue
		}
		log.Info().Str("country", country).Strs("services", serviceIDs).Str("cursor", cursor).
			Msg("seeding movies and streaming options")

		for {
			if err := s.limiter.Wait(ctx); err != nil {
				runErr = err
				break sweep
			}
			page, err := s.client.SearchShowsByFilters(ctx, country, serviceIDs, cursor)
			if err != nil {
				// Stop this country for the run; other countries still get their turn.
				log.Error().Err(err).Str("country", country).Str("cursor", cursor).
					Msg("catalog page fetch failed, stopping country")
				break
			}
			for _, show := range page.Shows {
				if show.ID == "" {
					log.Warn().Str("country", country).Str("title", show.Title).
						Msg("skipping show without id")
					continue
				}
				batch.Merge(s.xform.TransformShow(show))
			}
			if page.HasMore {
				cursor = page.NextCursor
			} else {
				cursor = bookmarks.CursorEnd
			}
			cursors[country] = cursor
			if err := cursors.Save(s.cursorFile); err != nil {
				log.Error().Err(err).Str("country", country).Msg("cursor save failed, stopping run")
				runErr = err
				break sweep
			}
			if cursor == bookmarks.CursorEnd {
				log.Info().Str("country", country).Msg("catalog sweep complete for country")
				break
			}
			log.Debug().Str("country", country).Str("cursor", cursor).Msg("page seeded, cursor advanced")
		}
	}

	// An operator stop cancels ctx mid-run; the accumulated batch still lands.
	if err := s.store.CommitBatch(context.WithoutCancel(ctx), batch); err != nil {
		log.Error().Err(err).Msg("seed batch commit failed")
		return err
	}
	log.Info().
		Int("movies", len(batch.Movies)).
		Int("posters", len(batch.Posters)).
		Int("streaming_options", len(batch.Options)).
		Msg("seed run committed")
	return runErr
}
