package adapter_test

import (
	"testing"
	"time"

	"freestream-server/internal/adapter"
	"freestream-server/internal/model"
	"freestream-server/pkg/catalog"
)

var fixedNow = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func newTransformer(blacklist ...string) *adapter.Transformer {
	bl := map[string]struct{}{}
	for _, s := range blacklist {
		bl[s] = struct{}{}
	}
	return adapter.New(adapter.Config{
		BlacklistedServices: bl,
		Now:                 func() time.Time { return fixedNow },
	})
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func sampleShow() catalog.Show {
	return catalog.Show{
		ID:            "movie1",
		ImdbID:        "tt0000001",
		TmdbID:        "movie/1",
		Title:         "First Movie",
		Overview:      "A movie about being first.",
		ReleaseYear:   intPtr(1999),
		OriginalTitle: "First Movie",
		Directors:     []string{"Jane Doe"},
		Cast:          []string{"Actor One", "Actor Two"},
		Rating:        71,
		Runtime:       intPtr(104),
		ImageSet: catalog.ImageSet{
			VerticalPoster: map[string]string{"w240": "P1", "w360": "P2"},
		},
		StreamingOptions: map[string][]catalog.StreamingOption{
			"us": {
				{Service: catalog.ServiceRef{ID: "tubi"}, Type: "free", Link: "L1"},
			},
		},
	}
}

func TestTransformShow(t *testing.T) {
	b := newTransformer().TransformShow(sampleShow())

	movie, ok := b.Movies["movie1"]
	if !ok {
		t.Fatalf("expected movie1 in batch, got %v", b.Movies)
	}
	if movie.Title != "First Movie" || movie.ImdbID != "tt0000001" || movie.Rating != 71 {
		t.Errorf("unexpected movie fields: %+v", movie)
	}
	if movie.ReleaseYear == nil || *movie.ReleaseYear != 1999 {
		t.Errorf("expected release year 1999, got %v", movie.ReleaseYear)
	}

	if len(b.Posters) != 2 {
		t.Fatalf("expected 2 posters, got %d", len(b.Posters))
	}
	key := model.PosterKey{MovieID: "movie1", Type: model.PosterTypeVertical, Size: "w240"}
	if p := b.Posters[key]; p.Link != "P1" {
		t.Errorf("expected poster link P1, got %q", p.Link)
	}

	if len(b.Options) != 1 {
		t.Fatalf("expected 1 streaming option, got %d", len(b.Options))
	}
	opt := b.Options[model.OptionKey{MovieID: "movie1", CountryCode: "us", ServiceID: "tubi", Link: "L1"}]
	if opt.ServiceID != "tubi" || opt.Link != "L1" {
		t.Errorf("unexpected option: %+v", opt)
	}

	if _, ok := b.Refreshes[model.RefreshKey{MovieID: "movie1", CountryCode: "us"}]; !ok {
		t.Errorf("expected refresh pair for (movie1, us), got %v", b.Refreshes)
	}
}

func TestTransformShowOptionalFieldsAbsent(t *testing.T) {
	show := sampleShow()
	show.ReleaseYear = nil
	show.Runtime = nil
	show.Directors = nil

	b := newTransformer().TransformShow(show)
	movie := b.Movies["movie1"]
	if movie.ReleaseYear != nil || movie.Runtime != nil || movie.Directors != nil {
		t.Errorf("absent upstream fields must stay nil, got %+v", movie)
	}
}

func TestTransformIdempotence(t *testing.T) {
	tr := newTransformer()
	show := sampleShow()

	once := tr.TransformShow(show)
	twice := tr.TransformShow(show)
	twice.Merge(tr.TransformShow(show))

	if len(twice.Movies) != len(once.Movies) ||
		len(twice.Posters) != len(once.Posters) ||
		len(twice.Options) != len(once.Options) ||
		len(twice.Refreshes) != len(once.Refreshes) {
		t.Errorf("merging the same show twice changed entity counts: once=%d/%d/%d twice=%d/%d/%d",
			len(once.Movies), len(once.Posters), len(once.Options),
			len(twice.Movies), len(twice.Posters), len(twice.Options))
	}
}

func TestTransformFiltersTypeAndBlacklist(t *testing.T) {
	show := sampleShow()
	show.StreamingOptions = map[string][]catalog.StreamingOption{
		"us": {
			{Service: catalog.ServiceRef{ID: "tubi"}, Type: "free", Link: "L1"},
			{Service: catalog.ServiceRef{ID: "amazon"}, Type: "buy", Link: "L2"},
			{Service: catalog.ServiceRef{ID: "peacock"}, Type: "free", Link: "L3"},
		},
		"ca": {
			{Service: catalog.ServiceRef{ID: "Peacock"}, Type: "free", Link: "L4"},
		},
	}

	b := newTransformer("peacock").TransformShow(show)

	if len(b.Options) != 1 {
		t.Fatalf("expected only the tubi offer to survive, got %v", b.Options)
	}
	if _, ok := b.Options[model.OptionKey{MovieID: "movie1", CountryCode: "us", ServiceID: "tubi", Link: "L1"}]; !ok {
		t.Errorf("tubi offer missing from %v", b.Options)
	}
	// blacklist matching is case-insensitive, so the ca Peacock offer is gone
	// but the country's refresh pair is still recorded
	if _, ok := b.Refreshes[model.RefreshKey{MovieID: "movie1", CountryCode: "ca"}]; !ok {
		t.Errorf("expected refresh pair for (movie1, ca)")
	}
}

func TestTransformExpirationFiltering(t *testing.T) {
	past := fixedNow.Add(-time.Hour).Unix()
	future := fixedNow.Add(time.Hour).Unix()
	show := sampleShow()
	show.StreamingOptions = map[string][]catalog.StreamingOption{
		"us": {
			{Service: catalog.ServiceRef{ID: "tubi"}, Type: "free", Link: "expired", ExpiresOn: int64Ptr(past)},
			{Service: catalog.ServiceRef{ID: "tubi"}, Type: "free", Link: "forever"},
			{Service: catalog.ServiceRef{ID: "tubi"}, Type: "free", Link: "expiring", ExpiresSoon: true, ExpiresOn: int64Ptr(future)},
		},
	}

	b := newTransformer().TransformShow(show)

	if len(b.Options) != 2 {
		t.Fatalf("expected 2 surviving options, got %v", b.Options)
	}
	for _, link := range []string{"forever", "expiring"} {
		if _, ok := b.Options[model.OptionKey{MovieID: "movie1", CountryCode: "us", ServiceID: "tubi", Link: link}]; !ok {
			t.Errorf("expected option %q to survive", link)
		}
	}
}

func TestTransformShowWithNoFreeOffers(t *testing.T) {
	show := sampleShow()
	show.StreamingOptions = map[string][]catalog.StreamingOption{
		"us": {{Service: catalog.ServiceRef{ID: "amazon"}, Type: "buy", Link: "L1"}},
		"ca": {},
	}

	b := newTransformer().TransformShow(show)

	if len(b.Options) != 0 {
		t.Errorf("expected no options, got %v", b.Options)
	}
	if len(b.Movies) != 1 || len(b.Posters) != 2 {
		t.Errorf("movie and posters must still be contributed: %d movies, %d posters", len(b.Movies), len(b.Posters))
	}
	if len(b.Refreshes) != 2 {
		t.Errorf("expected refresh pairs for both countries, got %v", b.Refreshes)
	}
}

func TestDestructiveRefreshContribution(t *testing.T) {
	// A later payload for the same (movie, country) that only carries S2
	// must record the refresh pair so S1 rows get deleted before insert.
	show := sampleShow()
	show.StreamingOptions = map[string][]catalog.StreamingOption{
		"us": {{Service: catalog.ServiceRef{ID: "pluto"}, Type: "free", Link: "L9"}},
	}

	b := newTransformer().TransformShow(show)

	if _, ok := b.Refreshes[model.RefreshKey{MovieID: "movie1", CountryCode: "us"}]; !ok {
		t.Fatalf("refresh pair missing: %v", b.Refreshes)
	}
	if len(b.Options) != 1 {
		t.Fatalf("expected exactly the pluto option, got %v", b.Options)
	}
}
