package model

// Poster orientation currently stored. Only the vertical orientation is
// materialized locally; other orientations are dropped at transform time.
const PosterTypeVertical = "verticalPoster"

var AllowedPosterTypes = map[string]struct{}{
	PosterTypeVertical: {},
}

var AllowedPosterSizes = map[string]struct{}{
	"w240": {},
	"w360": {},
	"w480": {},
	"w600": {},
	"w720": {},
}

// Movie is one title. Every refresh from upstream supplies the complete
// attribute set, so an upsert replaces every column but the id.
type Movie struct {
	ID            string   `json:"id"` // upstream-assigned
	ImdbID        string   `json:"imdb_id"`
	TmdbID        string   `json:"tmdb_id"`
	Title         string   `json:"title"`
	Overview      string   `json:"overview"`
	ReleaseYear   *int     `json:"release_year,omitempty"`
	OriginalTitle string   `json:"original_title"`
	Directors     []string `json:"directors,omitempty"`
	Cast          []string `json:"cast"`
	Rating        int      `json:"rating"`
	Runtime       *int     `json:"runtime,omitempty"`
}

// MoviePoster is one image asset; (movie, type, size) is the immutable key
// and only the link column is replaceable.
type MoviePoster struct {
	MovieID string `json:"movie_id"`
	Type    string `json:"type"`
	Size    string `json:"size"`
	Link    string `json:"link"`
}

// StreamingOption is one free-to-watch offer. Rows carry a synthetic id in
// storage because (movie, country, service) is not unique: language and link
// variants coexist for the same triple.
type StreamingOption struct {
	ID          int64  `json:"id,omitempty"`
	MovieID     string `json:"movie_id"`
	CountryCode string `json:"country_code"`
	ServiceID   string `json:"service_id"`
	Link        string `json:"link"`
	ExpiresSoon bool   `json:"expires_soon"`
	ExpiresOn   *int64 `json:"expires_on,omitempty"`
}

// Service is a streaming provider with free-tier offerings.
type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	HomePage        string `json:"home_page"`
	ThemeColorCode  string `json:"theme_color_code"`
	LightThemeImage string `json:"light_theme_image"`
	DarkThemeImage  string `json:"dark_theme_image"`
	WhiteImage      string `json:"white_image"`
}

// CountryService maps a country to one service offered there.
type CountryService struct {
	CountryCode string `json:"country_code"`
	ServiceID   string `json:"service_id"`
}

// PosterKey identifies a poster within a sync batch.
type PosterKey struct {
	MovieID string
	Type    string
	Size    string
}

// OptionKey identifies a streaming option within a sync batch. Link is part
// of the key so distinct link variants for the same triple survive
// de-duplication across pages.
type OptionKey struct {
	MovieID     string
	CountryCode string
	ServiceID   string
	Link        string
}

// RefreshKey is a (movie, country) pair whose persisted streaming options
// must be deleted before a batch's rows for that pair are inserted.
type RefreshKey struct {
	MovieID     string
	CountryCode string
}
