package jobs

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"freestream-server/internal/adapter"
	"freestream-server/internal/bookmarks"
	"freestream-server/pkg/catalog"
)

// quotaShare is how much of the upstream's daily request quota one update
// run may spend, leaving headroom for other consumers of the key.
const quotaShare = 0.8

// Updater walks the upstream's change feed per country starting at a saved
// watermark timestamp, persisting the advanced watermark after every
// successful page and batching all writes into one commit at the end.
type Updater struct {
	store         Store
	client        Catalog
	xform         *adapter.Transformer
	watermarkFile string
	dailyQuota    int
}

func NewUpdater(store Store, client Catalog, xform *adapter.Transformer, watermarkFile string, dailyQuota int) *Updater {
	return &Updater{
		store:         store,
		client:        client,
		xform:         xform,
		watermarkFile: watermarkFile,
		dailyQuota:    dailyQuota,
	}
}

// SyncUpdates applies upstream changes for every country with at least one
// configured service. The run stops early when the request budget is spent
// (normal) or on the first unrecoverable upstream error; in both cases the
// entities accumulated so far are still committed and watermarks already
// persisted stay valid.
func (u *Updater) SyncUpdates(ctx context.Context) error {
	countryServices, err := u.store.CountryServiceIDs(ctx)
	if err != nil {
		return err
	}
	watermarks, err := bookmarks.LoadWatermarks(u.watermarkFile)
	if err != nil {
		return err
	}

	budget := int(math.Ceil(quotaShare * float64(u.dailyQuota)))
	requests := 0
	batch := adapter.NewBatch()
	var runErr error

run:
	for _, country := range sortedCountries(countryServices) {
		serviceIDs := countryServices[country]
		from := watermarks[country] // 0 when never started: "most recent changes"
		log.Info().Str("country", country).Int64("from", from).Msg("fetching updated shows")

		for {
			if requests >= budget {
				log.Warn().Int("requests", requests).Int("budget", budget).
					Msg("request budget reached, stopping update run")
				break run
			}
			requests++
			page, err := u.client.Changes(ctx, country, serviceIDs, from)
			if catalog.IsFromTooOld(err) {
				// The single recoverable case: one immediate retry without "from".
				log.Warn().Str("country", country).Int64("from", from).
					Msg(`"from" watermark older than lookback window, retrying without it`)
				if requests >= budget {
					log.Warn().Int("requests", requests).Int("budget", budget).
						Msg("request budget reached, stopping update run")
					break run
				}
				requests++
				page, err = u.client.Changes(ctx, country, serviceIDs, 0)
			}
			if err != nil {
				log.Error().Err(err).Str("country", country).Int64("from", from).
					Msg("changes fetch failed, stopping update run")
				runErr = err
				break run
			}
			if len(page.Shows) == 0 {
				log.Info().Str("country", country).Msg("no updates for country")
				break
			}
			for id, show := range page.Shows {
				if show.ID == "" {
					log.Warn().Str("country", country).Str("key", id).
						Msg("skipping changed show without id")
					continue
				}
				batch.Merge(u.xform.TransformShow(show))
			}
			next, err := page.NextFrom()
			if err != nil {
				log.Error().Err(err).Str("country", country).Msg("watermark derivation failed, stopping update run")
				runErr = err
				break run
			}
			watermarks[country] = next
			if err := watermarks.Save(u.watermarkFile); err != nil {
				log.Error().Err(err).Str("country", country).Msg("watermark save failed, stopping run")
				runErr = err
				break run
			}
			from = next
			if !page.HasMore {
				log.Info().Str("country", country).Int64("next_from", next).Msg("country caught up")
				break
			}
		}
	}

	// An operator stop cancels ctx mid-run; the accumulated batch still lands.
	if err := u.store.CommitBatch(context.WithoutCancel(ctx), batch); err != nil {
		log.Error().Err(err).Msg("update batch commit failed")
		if runErr != nil {
			return runErr
		}
		return err
	}
	log.Info().
		Int("movies", len(batch.Movies)).
		Int("posters", len(batch.Posters)).
		Int("streaming_options", len(batch.Options)).
		Int("requests", requests).
		Msg("update run committed")
	return runErr
}
