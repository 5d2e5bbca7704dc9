// Package jobs holds the out-of-band batch processes that keep the local
// catalog in sync with the upstream availability API. The seeder and updater
// are single-threaded, run-to-completion jobs meant to be invoked
// periodically, one instance at a time.
package jobs

import (
	"context"
	"sort"

	"freestream-server/internal/adapter"
	"freestream-server/pkg/catalog"
)

// Store is the slice of the repository the sync jobs need.
type Store interface {
	CountryServiceIDs(ctx context.Context) (map[string][]string, error)
	CommitBatch(ctx context.Context, b *adapter.Batch) error
}

// Catalog is the slice of the upstream client the sync jobs need.
type Catalog interface {
	SearchShowsByFilters(ctx context.Context, country string, serviceIDs []string, cursor string) (catalog.FilterPage, error)
	Changes(ctx context.Context, country string, serviceIDs []string, fromTimestamp int64) (catalog.ChangesPage, error)
}

// sortedCountries returns the country codes in stable order so runs are
// reproducible and bookmark files stay diffable across runs.
func sortedCountries(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
