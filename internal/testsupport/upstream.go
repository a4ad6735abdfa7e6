package testsupport

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Upstream is a canned HTTP provider. Routes match on path plus sorted query,
// then on path alone; anything else answers 404.
type Upstream struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string]cannedResponse
	calls  map[string]int
}

type cannedResponse struct {
	status int
	body   string
}

// NewUpstream starts a canned provider and registers cleanup.
func NewUpstream(t testing.TB) *Upstream {
	t.Helper()
	u := &Upstream{
		routes: make(map[string]cannedResponse),
		calls:  make(map[string]int),
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Server.Close)
	return u
}

// URL returns the server root.
func (u *Upstream) URL() string {
	return u.Server.URL
}

// Handle answers target ("/path?query") with a 200 JSON body.
func (u *Upstream) Handle(target, body string) {
	u.HandleStatus(target, http.StatusOK, body)
}

// HandleStatus answers target with status and body.
func (u *Upstream) HandleStatus(target string, status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[routeKey(target)] = cannedResponse{status: status, body: body}
}

// Calls returns how many requests hit target.
func (u *Upstream) Calls(target string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[routeKey(target)]
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	full := r.URL.Path
	if encoded := r.URL.Query().Encode(); encoded != "" {
		full += "?" + encoded
	}
	u.mu.Lock()
	u.calls[full]++
	resp, ok := u.routes[full]
	if !ok {
		resp, ok = u.routes[r.URL.Path]
	}
	u.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func routeKey(target string) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return target
	}
	if encoded := parsed.Query().Encode(); encoded != "" {
		return parsed.Path + "?" + encoded
	}
	return parsed.Path
}
