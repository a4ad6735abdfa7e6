package tvmaze

import (
	"cmp"
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"tvcatalog/internal/fetch"
	"tvcatalog/internal/logging"
)

// DefaultBaseURL is the public TVMaze API root.
const DefaultBaseURL = "https://api.tvmaze.com"

// Variant selects one of the day-schedule endpoints.
type Variant string

const (
	// VariantCountry is the broadcast schedule of one country.
	VariantCountry Variant = "country"
	// VariantWeb is the web/streaming schedule.
	VariantWeb Variant = "web"
	// VariantFull is the global schedule across networks and web channels.
	VariantFull Variant = "full"
	// VariantGeneric is /schedule without a country; the API applies its default.
	VariantGeneric Variant = "generic"
)

// DiscoveryVariants are the schedule endpoints polled for every window day.
var DiscoveryVariants = []Variant{VariantCountry, VariantWeb, VariantFull}

// Client issues TVMaze requests through a shared Fetcher.
type Client struct {
	fetcher *fetch.Fetcher
	baseURL string
	country string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithScheduleCountry sets the country used by VariantCountry.
func WithScheduleCountry(code string) Option {
	return func(c *Client) {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			c.country = code
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "tvmaze")
		}
	}
}

// New creates a client rooted at baseURL.
func New(fetcher *fetch.Fetcher, baseURL string, opts ...Option) *Client {
	if fetcher == nil {
		fetcher = fetch.New()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		fetcher: fetcher,
		baseURL: baseURL,
		country: "US",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Host returns the API host name, used to register the fetch throttle.
func Host(baseURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// ScheduleURL builds the endpoint for variant on date (YYYY-MM-DD).
func (c *Client) ScheduleURL(variant Variant, date string) string {
	params := url.Values{}
	path := "/schedule"
	switch variant {
	case VariantCountry:
		params.Set("country", c.country)
	case VariantWeb:
		path = "/schedule/web"
	case VariantFull:
		path = "/schedule/full"
	}
	params.Set("date", date)
	return c.baseURL + path + "?" + params.Encode()
}

// Schedule returns the episodes airing on date for variant.
func (c *Client) Schedule(ctx context.Context, variant Variant, date string) ([]Episode, bool) {
	var episodes []Episode
	if !c.fetcher.JSON(ctx, c.ScheduleURL(variant, date), &episodes) {
		c.logger.Debug("schedule unavailable",
			logging.String(logging.FieldDate, date),
			logging.String("variant", string(variant)),
			logging.String(logging.FieldEventType, "schedule_unavailable"),
		)
		return nil, false
	}
	return episodes, true
}

// EpisodesByDate returns the show's episodes that aired on date.
func (c *Client) EpisodesByDate(ctx context.Context, showID int64, date string) ([]Episode, bool) {
	endpoint := c.baseURL + "/shows/" + strconv.FormatInt(showID, 10) + "/episodesbydate?" +
		url.Values{"date": {date}}.Encode()
	var episodes []Episode
	if !c.fetcher.JSON(ctx, endpoint, &episodes) {
		return nil, false
	}
	return episodes, true
}

// LookupIMDb resolves an IMDb id to a TVMaze show.
func (c *Client) LookupIMDb(ctx context.Context, imdbID string) (*Show, bool) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, false
	}
	return c.lookup(ctx, url.Values{"imdb": {imdbID}})
}

// LookupTheTVDB resolves a TheTVDB id to a TVMaze show.
func (c *Client) LookupTheTVDB(ctx context.Context, tvdbID int64) (*Show, bool) {
	if tvdbID <= 0 {
		return nil, false
	}
	return c.lookup(ctx, url.Values{"thetvdb": {strconv.FormatInt(tvdbID, 10)}})
}

func (c *Client) lookup(ctx context.Context, params url.Values) (*Show, bool) {
	var show Show
	if !c.fetcher.JSON(ctx, c.baseURL+"/lookup/shows?"+params.Encode(), &show) {
		return nil, false
	}
	if show.ID == 0 {
		return nil, false
	}
	return &show, true
}

// ShowWithEpisodes fetches the show detail with its full episode list embedded.
func (c *Client) ShowWithEpisodes(ctx context.Context, showID int64) (*Show, bool) {
	if showID <= 0 {
		return nil, false
	}
	endpoint := c.baseURL + "/shows/" + strconv.FormatInt(showID, 10) + "?embed=episodes"
	var show Show
	if !c.fetcher.JSON(ctx, endpoint, &show) {
		return nil, false
	}
	if show.ID == 0 {
		return nil, false
	}
	return &show, true
}

// UpdatedShows returns the ids of shows updated within since ("day",
// "week", or "month"), most recently updated first.
func (c *Client) UpdatedShows(ctx context.Context, since string) ([]int64, bool) {
	since = strings.TrimSpace(since)
	if since == "" {
		since = "day"
	}
	var updates map[string]int64
	if !c.fetcher.JSON(ctx, c.baseURL+"/updates/shows?"+url.Values{"since": {since}}.Encode(), &updates) {
		return nil, false
	}
	type update struct {
		id int64
		at int64
	}
	list := make([]update, 0, len(updates))
	for key, at := range updates {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		list = append(list, update{id: id, at: at})
	}
	slices.SortFunc(list, func(a, b update) int {
		if a.at != b.at {
			return cmp.Compare(b.at, a.at)
		}
		return cmp.Compare(a.id, b.id)
	})
	ids := make([]int64, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.id)
	}
	return ids, true
}
