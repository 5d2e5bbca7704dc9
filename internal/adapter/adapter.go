// Package adapter converts upstream show records into local storage entities.
// Results are keyed by natural identity so that the same show transformed on
// different pages merges into a batch without duplicates.
package adapter

import (
	"strings"
	"time"

	"freestream-server/internal/model"
	"freestream-server/pkg/catalog"
)

// Config carries the transform-time policy. The blacklist is loaded once at
// process start and threaded through explicitly; Now is overridable in tests.
type Config struct {
	BlacklistedServices map[string]struct{}
	Now                 func() time.Time
}

type Transformer struct {
	blacklist map[string]struct{}
	now       func() time.Time
}

func New(cfg Config) *Transformer {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	bl := cfg.BlacklistedServices
	if bl == nil {
		bl = map[string]struct{}{}
	}
	return &Transformer{blacklist: bl, now: now}
}

// Batch accumulates transformed entities across pages of a sync run.
type Batch struct {
	Movies    map[string]model.Movie
	Posters   map[model.PosterKey]model.MoviePoster
	Options   map[model.OptionKey]model.StreamingOption
	Refreshes map[model.RefreshKey]struct{}
}

func NewBatch() *Batch {
	return &Batch{
		Movies:    map[string]model.Movie{},
		Posters:   map[model.PosterKey]model.MoviePoster{},
		Options:   map[model.OptionKey]model.StreamingOption{},
		Refreshes: map[model.RefreshKey]struct{}{},
	}
}

// Merge unions other into b. Keys already present are overwritten; counts
// stay stable when the same show is merged twice.
func (b *Batch) Merge(other *Batch) {
	for k, v := range other.Movies {
		b.Movies[k] = v
	}
	for k, v := range other.Posters {
		b.Posters[k] = v
	}
	for k, v := range other.Options {
		b.Options[k] = v
	}
	for k := range other.Refreshes {
		b.Refreshes[k] = struct{}{}
	}
}

// Empty reports whether the batch holds nothing to persist.
func (b *Batch) Empty() bool {
	return len(b.Movies) == 0 && len(b.Posters) == 0 && len(b.Options) == 0 && len(b.Refreshes) == 0
}

// TransformShow converts one upstream show into its local entities.
//
// Offers survive only when the type is "free", the service is not
// blacklisted (case-insensitive), and any expiration timestamp is still in
// the future. A show with zero surviving offers still contributes its movie
// and posters, and still records a refresh pair for every country present in
// the payload so stale rows are cleared.
func (t *Transformer) TransformShow(show catalog.Show) *Batch {
	b := NewBatch()

	b.Movies[show.ID] = model.Movie{
		ID:            show.ID,
		ImdbID:        show.ImdbID,
		TmdbID:        show.TmdbID,
		Title:         show.Title,
		Overview:      show.Overview,
		ReleaseYear:   show.ReleaseYear,
		OriginalTitle: show.OriginalTitle,
		Directors:     show.Directors,
		Cast:          show.Cast,
		Rating:        show.Rating,
		Runtime:       show.Runtime,
	}

	for size, link := range show.ImageSet.VerticalPoster {
		key := model.PosterKey{MovieID: show.ID, Type: model.PosterTypeVertical, Size: size}
		b.Posters[key] = model.MoviePoster{MovieID: show.ID, Type: model.PosterTypeVertical, Size: size, Link: link}
	}

	now := t.now().Unix()
	for country, options := range show.StreamingOptions {
		b.Refreshes[model.RefreshKey{MovieID: show.ID, CountryCode: country}] = struct{}{}
		for _, opt := range options {
			if !t.keep(opt, now) {
				continue
			}
			key := model.OptionKey{MovieID: show.ID, CountryCode: country, ServiceID: opt.Service.ID, Link: opt.Link}
			b.Options[key] = model.StreamingOption{
				MovieID:     show.ID,
				CountryCode: country,
				ServiceID:   opt.Service.ID,
				Link:        opt.Link,
				ExpiresSoon: opt.ExpiresSoon,
				ExpiresOn:   opt.ExpiresOn,
			}
		}
	}

	return b
}

func (t *Transformer) keep(opt catalog.StreamingOption, nowUnix int64) bool {
	if opt.Type != "free" {
		return false
	}
	if _, blacklisted := t.blacklist[strings.ToLower(opt.Service.ID)]; blacklisted {
		return false
	}
	if opt.ExpiresOn != nil && *opt.ExpiresOn <= nowUnix {
		return false
	}
	return true
}
