package catalog

import (
	"encoding/json"
	"strconv"
)

// Namespace prefixes every emitted identifier.
const Namespace = "tvmaze"

// ContentType is the record type tag for shows.
const ContentType = "series"

// NamespacedID returns the emitted identifier for a provider id.
func NamespacedID(id int64) string {
	return Namespace + ":" + strconv.FormatInt(id, 10)
}

// ParseNamespacedID parses "tvmaze:<id>" or a bare numeric id.
func ParseNamespacedID(value string) (int64, bool) {
	if len(value) > len(Namespace)+1 && value[:len(Namespace)+1] == Namespace+":" {
		value = value[len(Namespace)+1:]
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CatalogEntry is one line of the catalog index.
type CatalogEntry struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Poster      *string `json:"poster"`
	Background  *string `json:"background"`
	LatestDate  string  `json:"latestDate"`
}

// Index is the catalog index document.
type Index struct {
	Metas []CatalogEntry `json:"metas"`
	TS    int64          `json:"ts"`
}

// Video is one episode of a meta record.
type Video struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Season   int    `json:"season"`
	Episode  *int   `json:"episode"`
	Released string `json:"released"`
	Overview string `json:"overview"`
}

// MetaRecord is the detail document of one show: every show field plus the
// full deduplicated video list.
type MetaRecord struct {
	ShowID int64
	Name   string
	Fields map[string]json.RawMessage
	Videos []Video
}

// FileName returns the record's file name inside the meta directory.
func (m MetaRecord) FileName() string {
	return NamespacedID(m.ShowID) + ".json"
}

// MarshalJSON encodes the record as {"meta": {...fields, "videos": [...]}}.
func (m MetaRecord) MarshalJSON() ([]byte, error) {
	videos := m.Videos
	if videos == nil {
		videos = []Video{}
	}
	encoded, err := json.Marshal(videos)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]json.RawMessage, len(m.Fields)+1)
	for k, v := range m.Fields {
		meta[k] = v
	}
	meta["videos"] = encoded
	return json.Marshal(map[string]any{"meta": meta})
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (m *MetaRecord) UnmarshalJSON(data []byte) error {
	var doc struct {
		Meta map[string]json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*m = MetaRecord{Fields: doc.Meta}
	if raw, ok := doc.Meta["videos"]; ok {
		if err := json.Unmarshal(raw, &m.Videos); err != nil {
			return err
		}
		delete(m.Fields, "videos")
	}
	if raw, ok := doc.Meta["id"]; ok {
		_ = json.Unmarshal(raw, &m.ShowID)
	}
	if raw, ok := doc.Meta["name"]; ok {
		_ = json.Unmarshal(raw, &m.Name)
	}
	return nil
}
