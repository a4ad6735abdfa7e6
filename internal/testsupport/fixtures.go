package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// Show returns a TVMaze show document.
func Show(id int64, name, showType, country string) map[string]any {
	network := map[string]any{"id": id * 10, "name": name + " Network", "country": nil}
	if country != "" {
		network["country"] = map[string]any{"code": country, "name": country}
	}
	return map[string]any{
		"id":         id,
		"name":       name,
		"type":       showType,
		"language":   "English",
		"genres":     []string{"Drama"},
		"network":    network,
		"webChannel": nil,
		"externals":  map[string]any{"imdb": nil, "thetvdb": nil, "tvrage": nil},
		"image":      map[string]any{"medium": "https://img/" + name + "-m.jpg", "original": "https://img/" + name + ".jpg"},
		"summary":    "<p>" + name + " summary.</p>",
	}
}

// Episode returns a TVMaze episode document airing on airdate.
func Episode(id int64, name string, season, number int, airdate string) map[string]any {
	return map[string]any{
		"id":       id,
		"name":     name,
		"season":   season,
		"number":   number,
		"airdate":  airdate,
		"airstamp": airdate + "T20:00:00+00:00",
		"summary":  "<p>" + name + "</p>",
	}
}

// ScheduleEntry returns a schedule item for episode with show attached
// directly, or under _embedded when embedded is true.
func ScheduleEntry(episode, show map[string]any, embedded bool) map[string]any {
	out := make(map[string]any, len(episode)+1)
	for k, v := range episode {
		out[k] = v
	}
	if embedded {
		out["_embedded"] = map[string]any{"show": show}
	} else {
		out["show"] = show
	}
	return out
}

// WithEpisodes returns show with episodes embedded, as ?embed=episodes does.
func WithEpisodes(show map[string]any, episodes ...map[string]any) map[string]any {
	out := make(map[string]any, len(show)+1)
	for k, v := range show {
		out[k] = v
	}
	list := make([]any, 0, len(episodes))
	for _, ep := range episodes {
		list = append(list, ep)
	}
	out["_embedded"] = map[string]any{"episodes": list}
	return out
}

// JSON encodes v or fails the test.
func JSON(t testing.TB, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return string(data)
}

// ReadJSON decodes the file at path into dst or fails the test.
func ReadJSON(t testing.TB, path string, dst any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}
