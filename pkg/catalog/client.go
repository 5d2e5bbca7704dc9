package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://streaming-availability.p.rapidapi.com"

// Client talks to the Streaming Availability API (RapidAPI).
type Client struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func New(apiKey string) *Client {
	return &Client{APIKey: apiKey, BaseURL: defaultBaseURL, Client: &http.Client{Timeout: 30 * time.Second}}
}

// StatusError is returned for any non-200 upstream response. It carries the
// upstream status code and message so callers can log enough context to
// resume manually.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog status %d: %s", e.StatusCode, e.Message)
}

// The one recoverable upstream error: a "from" watermark older than the
// 31-day change-feed lookback window.
const fromTooOldFragment = `parameter "from" cannot be more than 31 days in the past`

// IsFromTooOld reports whether err is the 400 rejection of an over-31-day-old
// "from" value, the single case callers may retry without the parameter.
func IsFromTooOld(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == http.StatusBadRequest && strings.Contains(se.Message, fromTooOldFragment)
}

// FilterPage is one page of /shows/search/filters results.
type FilterPage struct {
	Shows      []Show `json:"shows"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor"`
}

// ChangesPage is one page of the /changes feed. Shows is keyed by show id.
type ChangesPage struct {
	Shows      map[string]Show `json:"shows"`
	Changes    []Change        `json:"changes"`
	HasMore    bool            `json:"hasMore"`
	NextCursor string          `json:"nextCursor"`
}

type Change struct {
	Timestamp int64 `json:"timestamp"`
}

// NextFrom derives the next "from" watermark for a page of changes: the
// timestamp embedded in the next-page cursor when more pages exist, else the
// last change's timestamp plus one so it is not re-fetched next run.
func (p ChangesPage) NextFrom() (int64, error) {
	if p.HasMore {
		head, _, _ := strings.Cut(p.NextCursor, ":")
		ts, err := strconv.ParseInt(head, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse next cursor %q: %w", p.NextCursor, err)
		}
		return ts, nil
	}
	if len(p.Changes) == 0 {
		return 0, fmt.Errorf("no changes to derive watermark from")
	}
	return p.Changes[len(p.Changes)-1].Timestamp + 1, nil
}

// Country describes one country's service lineup from /countries.
type Country struct {
	CountryCode string    `json:"countryCode"`
	Services    []Service `json:"services"`
}

type Service struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	HomePage             string          `json:"homePage"`
	ThemeColorCode       string          `json:"themeColorCode"`
	ImageSet             ServiceImageSet `json:"imageSet"`
	StreamingOptionTypes OptionTypes     `json:"streamingOptionTypes"`
}

type ServiceImageSet struct {
	LightThemeImage string `json:"lightThemeImage"`
	DarkThemeImage  string `json:"darkThemeImage"`
	WhiteImage      string `json:"whiteImage"`
}

type OptionTypes struct {
	Addon bool `json:"addon"`
	Buy   bool `json:"buy"`
	Free  bool `json:"free"`
	Rent  bool `json:"rent"`
	Sub   bool `json:"subscription"`
}

// Show is one upstream title record including per-country offers and images.
// Optional fields decode to nil when the key is absent.
type Show struct {
	ID               string                       `json:"id"`
	ImdbID           string                       `json:"imdbId"`
	TmdbID           string                       `json:"tmdbId"`
	Title            string                       `json:"title"`
	Overview         string                       `json:"overview"`
	ReleaseYear      *int                         `json:"releaseYear"`
	OriginalTitle    string                       `json:"originalTitle"`
	Directors        []string                     `json:"directors"`
	Cast             []string                     `json:"cast"`
	Rating           int                          `json:"rating"`
	Runtime          *int                         `json:"runtime"`
	ImageSet         ImageSet                     `json:"imageSet"`
	StreamingOptions map[string][]StreamingOption `json:"streamingOptions"`
}

// ImageSet holds poster links keyed by size class (w240, w360, ...).
type ImageSet struct {
	VerticalPoster map[string]string `json:"verticalPoster"`
}

type StreamingOption struct {
	Service     ServiceRef `json:"service"`
	Type        string     `json:"type"`
	Link        string     `json:"link"`
	ExpiresSoon bool       `json:"expiresSoon"`
	ExpiresOn   *int64     `json:"expiresOn"`
}

type ServiceRef struct {
	ID string `json:"id"`
}

// Catalogs joins service ids into the comma-separated free-tier catalog list
// the filter and changes endpoints expect.
func Catalogs(serviceIDs []string) string {
	parts := make([]string, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		parts = append(parts, id+".free")
	}
	return strings.Join(parts, ",")
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.APIKey == "" {
		return fmt.Errorf("missing catalog API key")
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	u.RawQuery = query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-RapidAPI-Key", c.APIKey)
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &StatusError{StatusCode: resp.StatusCode, Message: body.Message}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Countries fetches the per-country service lineups, keyed by country code.
func (c *Client) Countries(ctx context.Context) (map[string]Country, error) {
	out := map[string]Country{}
	if err := c.get(ctx, "/countries", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchShowsByFilters fetches one page of a country's free movie catalog,
// ordered by original title. An empty cursor requests the first page.
func (c *Client) SearchShowsByFilters(ctx context.Context, country string, serviceIDs []string, cursor string) (FilterPage, error) {
	q := url.Values{}
	q.Set("country", country)
	q.Set("order_by", "original_title")
	q.Set("catalogs", Catalogs(serviceIDs))
	q.Set("show_type", "movie")
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	var page FilterPage
	if err := c.get(ctx, "/shows/search/filters", q, &page); err != nil {
		return FilterPage{}, err
	}
	return page, nil
}

// Changes fetches one page of the updated-shows feed for a country's free
// movie catalogs. fromTimestamp <= 0 omits the "from" filter, meaning "the
// most recent changes".
func (c *Client) Changes(ctx context.Context, country string, serviceIDs []string, fromTimestamp int64) (ChangesPage, error) {
	q := url.Values{}
	q.Set("change_type", "updated")
	q.Set("country", country)
	q.Set("item_type", "show")
	q.Set("show_type", "movie")
	q.Set("catalogs", Catalogs(serviceIDs))
	if fromTimestamp > 0 {
		q.Set("from", strconv.FormatInt(fromTimestamp, 10))
	}
	var page ChangesPage
	if err := c.get(ctx, "/changes", q, &page); err != nil {
		return ChangesPage{}, err
	}
	return page, nil
}

// GetShow fetches one show by id.
func (c *Client) GetShow(ctx context.Context, id string) (Show, error) {
	var show Show
	if err := c.get(ctx, "/shows/"+url.PathEscape(id), url.Values{}, &show); err != nil {
		return Show{}, err
	}
	return show, nil
}

// SearchShowsByTitle searches a country's movie catalog by title.
func (c *Client) SearchShowsByTitle(ctx context.Context, country, title string) ([]Show, error) {
	q := url.Values{}
	q.Set("country", country)
	q.Set("title", title)
	q.Set("show_type", "movie")
	var shows []Show
	if err := c.get(ctx, "/shows/search/title", q, &shows); err != nil {
		return nil, err
	}
	return shows, nil
}
