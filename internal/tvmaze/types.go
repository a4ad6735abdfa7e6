package tvmaze

import (
	"encoding/json"
	"strings"
)

// Country is a broadcaster's country of origin.
type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`
}

// Channel is a network or web channel.
type Channel struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Country *Country `json:"country"`
}

// Image holds poster URLs.
type Image struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

// Externals are the show's identifiers at other providers.
type Externals struct {
	IMDB    string `json:"imdb"`
	TheTVDB int64  `json:"thetvdb"`
	TVRage  int64  `json:"tvrage"`
}

// Rating is the aggregate user rating.
type Rating struct {
	Average *float64 `json:"average"`
}

// ShowEmbedded carries resources requested with ?embed=.
type ShowEmbedded struct {
	Episodes []Episode `json:"episodes"`
}

// Show is a TVMaze show. Raw keeps the document it was decoded from so
// detail records can carry fields this struct does not model.
type Show struct {
	ID           int64         `json:"id"`
	URL          string        `json:"url,omitempty"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Language     string        `json:"language"`
	Genres       []string      `json:"genres"`
	Status       string        `json:"status,omitempty"`
	Premiered    string        `json:"premiered,omitempty"`
	OfficialSite string        `json:"officialSite,omitempty"`
	Rating       *Rating       `json:"rating,omitempty"`
	Network      *Channel      `json:"network"`
	WebChannel   *Channel      `json:"webChannel"`
	Externals    Externals     `json:"externals"`
	Image        *Image        `json:"image"`
	Summary      string        `json:"summary"`
	Embedded     *ShowEmbedded `json:"_embedded,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the show and retains the raw document.
func (s *Show) UnmarshalJSON(data []byte) error {
	type plain Show
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = Show(decoded)
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Broadcaster returns the network when present, else the web channel.
func (s *Show) Broadcaster() *Channel {
	if s == nil {
		return nil
	}
	if s.Network != nil {
		return s.Network
	}
	return s.WebChannel
}

// CountryCode returns the upper-cased country of the network, else of the
// web channel, or "" when neither carries one.
func (s *Show) CountryCode() string {
	if s == nil {
		return ""
	}
	for _, ch := range []*Channel{s.Network, s.WebChannel} {
		if ch != nil && ch.Country != nil && strings.TrimSpace(ch.Country.Code) != "" {
			return strings.ToUpper(strings.TrimSpace(ch.Country.Code))
		}
	}
	return ""
}

// WebOnly reports whether the show has a web channel and no network.
func (s *Show) WebOnly() bool {
	return s != nil && s.Network == nil && s.WebChannel != nil
}

// EmbeddedEpisodes returns the embedded episode list, or nil.
func (s *Show) EmbeddedEpisodes() []Episode {
	if s == nil || s.Embedded == nil {
		return nil
	}
	return s.Embedded.Episodes
}

// HasEmbeddedEpisodes reports whether the show carries at least one embedded
// episode. An empty embedded list counts as absent.
func (s *Show) HasEmbeddedEpisodes() bool {
	return len(s.EmbeddedEpisodes()) > 0
}

// Fields returns the show as a field map for detail records. The embedded
// episode list is dropped; records carry their own video list.
func (s *Show) Fields() (map[string]json.RawMessage, error) {
	data := []byte(s.Raw)
	if len(data) == 0 {
		encoded, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		data = encoded
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	delete(fields, "_embedded")
	return fields, nil
}

// EpisodeEmbedded carries resources embedded in an episode.
type EpisodeEmbedded struct {
	Show *Show `json:"show"`
}

// Episode is a TVMaze episode. Number is nil for specials.
type Episode struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Season   int              `json:"season"`
	Number   *int             `json:"number"`
	Type     string           `json:"type,omitempty"`
	Airdate  string           `json:"airdate"`
	Airtime  string           `json:"airtime,omitempty"`
	Airstamp string           `json:"airstamp"`
	Runtime  *int             `json:"runtime,omitempty"`
	Summary  string           `json:"summary"`
	Show     *Show            `json:"show,omitempty"`
	Embedded *EpisodeEmbedded `json:"_embedded,omitempty"`
}

// ShowRef returns the show the episode belongs to: the direct reference when
// present, else the embedded one.
func (e *Episode) ShowRef() *Show {
	if e == nil {
		return nil
	}
	if e.Show != nil {
		return e.Show
	}
	if e.Embedded != nil {
		return e.Embedded.Show
	}
	return nil
}

// Stripped returns a copy without show references, for storage in a
// registry keyed by show.
func (e Episode) Stripped() Episode {
	e.Show = nil
	e.Embedded = nil
	return e
}
