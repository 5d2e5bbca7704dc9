package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"freestream-server/internal/adapter"
)

// CommitBatch persists one sync run's accumulated entities in a single
// transaction. Either the whole batch lands or none of it does; bookmarks
// persisted before a failed commit stay valid, so the next run resumes from
// them.
func (r *Repository) CommitBatch(ctx context.Context, b *adapter.Batch) error {
	if b == nil || b.Empty() {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := flushBatch(ctx, tx, buildBatch(b)); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// buildBatch queues one run's statements: availability deletes for every
// recorded (movie, country) refresh pair first, then movie and poster
// upserts, then availability inserts. flushBatch stops at the first failed
// statement, so a failed delete never lets the following inserts proceed.
func buildBatch(b *adapter.Batch) *pgx.Batch {
	batch := &pgx.Batch{}
	for key := range b.Refreshes {
		batch.Queue(deleteOptionsSQL, key.MovieID, key.CountryCode)
	}
	for _, m := range b.Movies {
		batch.Queue(upsertMovieSQL, m.ID, m.ImdbID, m.TmdbID, m.Title, m.Overview, m.ReleaseYear,
			m.OriginalTitle, m.Directors, m.Cast, m.Rating, m.Runtime)
	}
	for _, p := range b.Posters {
		batch.Queue(upsertPosterSQL, p.MovieID, p.Type, p.Size, p.Link)
	}
	for _, o := range b.Options {
		batch.Queue(insertOptionSQL, o.MovieID, o.CountryCode, o.ServiceID, o.Link, o.ExpiresSoon, o.ExpiresOn)
	}
	return batch
}

// flushBatch sends a queued batch over tx and surfaces the first error.
func flushBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}
