package tmdb

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"tvcatalog/internal/fetch"
)

// DefaultBaseURL is the public TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Result represents a single TMDB TV match.
type Result struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	OriginalName     string   `json:"original_name"`
	Overview         string   `json:"overview"`
	FirstAirDate     string   `json:"first_air_date"`
	OriginCountry    []string `json:"origin_country"`
	OriginalLanguage string   `json:"original_language"`
	Popularity       float64  `json:"popularity"`
}

// Response models the TMDB paginated discover response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// FindResponse models /find; only TV results are used.
type FindResponse struct {
	TVResults []Result `json:"tv_results"`
}

// ExternalIDs lists a series' identifiers at other providers.
type ExternalIDs struct {
	ID     int64  `json:"id"`
	IMDbID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// Finder defines the TMDB operations used by fallback resolution.
type Finder interface {
	FindByIMDb(ctx context.Context, imdbID string) ([]Result, bool)
	ExternalIDs(ctx context.Context, tvID int64) (*ExternalIDs, bool)
	DiscoverTV(ctx context.Context, from, to string, page int) (*Response, bool)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	fetcher  *fetch.Fetcher
}

var _ Finder = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithFetcher routes requests through a shared Fetcher.
func WithFetcher(fetcher *fetch.Fetcher) Option {
	return func(c *Client) {
		if fetcher != nil {
			c.fetcher = fetcher
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: strings.TrimSpace(language),
		fetcher:  fetch.New(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	return c.baseURL + path + "?" + params.Encode()
}

// FindByIMDb returns the TV entries TMDB associates with an IMDb id.
func (c *Client) FindByIMDb(ctx context.Context, imdbID string) ([]Result, bool) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, false
	}
	var payload FindResponse
	if !c.fetcher.JSON(ctx, c.endpoint("/find/"+url.PathEscape(imdbID), url.Values{"external_source": {"imdb_id"}}), &payload) {
		return nil, false
	}
	return payload.TVResults, len(payload.TVResults) > 0
}

// ExternalIDs returns the identifiers TMDB holds for a TV series.
func (c *Client) ExternalIDs(ctx context.Context, tvID int64) (*ExternalIDs, bool) {
	if tvID <= 0 {
		return nil, false
	}
	var payload ExternalIDs
	if !c.fetcher.JSON(ctx, c.endpoint("/tv/"+strconv.FormatInt(tvID, 10)+"/external_ids", nil), &payload) {
		return nil, false
	}
	return &payload, true
}

// DiscoverTV lists series whose first air date lies in [from, to].
func (c *Client) DiscoverTV(ctx context.Context, from, to string, page int) (*Response, bool) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("first_air_date.gte", from)
	params.Set("first_air_date.lte", to)
	params.Set("sort_by", "first_air_date.desc")
	params.Set("page", strconv.Itoa(page))
	var payload Response
	if !c.fetcher.JSON(ctx, c.endpoint("/discover/tv", params), &payload) {
		return nil, false
	}
	return &payload, true
}
