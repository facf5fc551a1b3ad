package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/navkit/internal/config"
	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navkit/internal/index"
	"github.com/MrSnakeDoc/navkit/internal/logger"
	"github.com/MrSnakeDoc/navkit/internal/metrics"
	"github.com/MrSnakeDoc/navkit/internal/sources/site"
)

const testSite = `navbar:
  - /
  - text: Guide
    prefix: /guide/
    children: [intro.html, setup.html]
sidebar:
  /docs/: structure
  /guide/:
    - intro.html
    - setup.html
  /docs/legacy/: none
theme:
  logo: /logo.svg
encrypt:
  /private/:
    hint: ask the team
    password: opensesame
`

type fakeExpander struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeExpander) Expand(prefix string) ([]domain.NavEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	href := prefix + "intro.html"
	return []domain.NavEntry{{Kind: domain.KindLink, Text: "Intro", Link: href, Href: href}}, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]domain.Resolution
}

func (f *fakeCache) GetCachedResolution(_ context.Context, checksum, prefix string) (*domain.Resolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res, ok := f.entries[checksum+prefix]; ok {
		return &res, nil
	}
	return nil, nil
}

func (f *fakeCache) CacheResolution(_ context.Context, checksum string, res domain.Resolution, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[checksum+res.Prefix] = res
	return nil
}

type testEnv struct {
	handler  http.Handler
	index    *index.ModelIndex
	expander *fakeExpander
	cache    *fakeCache
	trigger  chan struct{}
}

func newTestEnv(t *testing.T, loaded bool, mutate func(*deps.Deps)) *testEnv {
	t.Helper()

	env := &testEnv{
		index:    index.NewModelIndex(),
		expander: &fakeExpander{},
		cache:    &fakeCache{entries: make(map[string]domain.Resolution)},
		trigger:  make(chan struct{}, 1),
	}
	if loaded {
		doc, err := site.Parse([]byte(testSite))
		require.NoError(t, err)
		s, err := site.NewMapper(bcrypt.MinCost).MapSite(doc, "site.yaml")
		require.NoError(t, err)
		env.index.Swap(s)
	}

	d := deps.Deps{
		Logger:        logger.NewNop(),
		StartTime:     time.Now(),
		Version:       "test",
		TimeNow:       time.Now,
		Index:         env.index,
		Expander:      env.expander,
		Cache:         env.cache,
		CacheTTL:      time.Minute,
		Metrics:       metrics.NoopRecorder{},
		ReloadTrigger: env.trigger,
		VerifyBurst:   10,
		VerifyPerMin:  10,
	}
	if mutate != nil {
		mutate(&d)
	}

	cfg := &config.Config{ListenPort: ":0", RequestTimeout: time.Second}
	env.handler = NewRouter(cfg, d.Logger, d)
	return env
}

func (e *testEnv) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndReadiness(t *testing.T) {
	empty := newTestEnv(t, false, nil)
	require.Equal(t, http.StatusOK, empty.do("GET", "/healthz", "", nil).Code)
	require.Equal(t, http.StatusServiceUnavailable, empty.do("GET", "/readyz", "", nil).Code)
	require.Equal(t, http.StatusServiceUnavailable, empty.do("GET", "/api/navbar", "", nil).Code)

	infra := decode(t, empty.do("GET", "/infra", "", nil))
	require.Equal(t, "critical", infra["status"])

	env := newTestEnv(t, true, nil)
	rec := env.do("GET", "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["ready"])

	infra = decode(t, env.do("GET", "/infra", "", nil))
	require.Equal(t, "ok", infra["status"])
}

func TestNavbarConditionalGet(t *testing.T) {
	env := newTestEnv(t, true, nil)

	rec := env.do("GET", "/api/navbar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var body struct {
		Navbar []domain.NavEntry `json:"navbar"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Navbar, 2)
	require.Equal(t, "Home", body.Navbar[0].Text)
	require.Equal(t, "/guide/setup.html", body.Navbar[1].Children[1].Href)

	rec = env.do("GET", "/api/navbar", "", map[string]string{"If-None-Match": etag})
	require.Equal(t, http.StatusNotModified, rec.Code)
}

func TestSidebarRulesAndTheme(t *testing.T) {
	env := newTestEnv(t, true, nil)

	var rules struct {
		Rules []struct {
			Prefix   string `json:"prefix"`
			Strategy string `json:"strategy"`
		} `json:"rules"`
	}
	rec := env.do("GET", "/api/sidebar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.Len(t, rules.Rules, 3)
	require.Equal(t, "/docs/", rules.Rules[0].Prefix)
	require.Equal(t, "auto-structure", rules.Rules[0].Strategy)
	require.Equal(t, "explicit", rules.Rules[1].Strategy)

	theme := decode(t, env.do("GET", "/api/theme", "", nil))
	require.Equal(t, "/logo.svg", theme["theme"].(map[string]any)["logo"])
}

func TestResolveSidebar(t *testing.T) {
	env := newTestEnv(t, true, nil)

	tests := []struct {
		name     string
		path     string
		status   int
		strategy string
		prefix   string
	}{
		{"structure", "/docs/go/intro.html", http.StatusOK, "auto-structure", "/docs/"},
		{"explicit", "/guide/setup.html", http.StatusOK, "explicit", "/guide/"},
		{"nested override", "/docs/legacy/old.html", http.StatusOK, "no-sidebar", "/docs/legacy/"},
		{"no match", "/blog/post.html", http.StatusOK, "no-sidebar", ""},
		{"missing path", "", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do("GET", "/api/sidebar/resolve?path="+tt.path, "", nil)
			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}
			body := decode(t, rec)
			require.Equal(t, tt.strategy, body["strategy"])
			if tt.prefix == "" {
				require.Equal(t, false, body["matched"])
			} else {
				require.Equal(t, tt.prefix, body["prefix"])
			}
		})
	}

	counts := env.index.DrainCounters()
	require.Equal(t, int64(1), counts["/docs/"])
	require.Equal(t, int64(1), counts[""])
}

func TestResolveSidebarExpandUsesCache(t *testing.T) {
	env := newTestEnv(t, true, nil)

	for i := 0; i < 2; i++ {
		rec := env.do("GET", "/api/sidebar/resolve?path=/docs/go/intro.html&expand=1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, true, body["expanded"])
		entries := body["entries"].([]any)
		require.Len(t, entries, 1)
		require.Equal(t, "/docs/intro.html", entries[0].(map[string]any)["href"])
	}
	require.Equal(t, 1, env.expander.calls)

	// every path under the prefix shares one expansion
	for _, path := range []string{"/docs/go/setup.html", "/docs/x?v=1", "/docs/x?v=2", "/docs/"} {
		rec := env.do("GET", "/api/sidebar/resolve?path="+url.QueryEscape(path)+"&expand=1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, path, body["path"])
		require.Equal(t, "/docs/", body["prefix"])
		require.Len(t, body["entries"].([]any), 1)
	}
	require.Equal(t, 1, env.expander.calls)
	require.Len(t, env.cache.entries, 1)

	// explicit rules are never expanded
	body := decode(t, env.do("GET", "/api/sidebar/resolve?path=/guide/intro.html&expand=1", "", nil))
	require.Equal(t, false, body["expanded"])
	require.Len(t, body["entries"].([]any), 2)
}

func TestVerifyEncrypt(t *testing.T) {
	env := newTestEnv(t, true, nil)

	tests := []struct {
		name   string
		body   string
		status int
		locked bool
		ok     bool
	}{
		{"correct password", `{"path":"/private/notes.html","password":"opensesame"}`, http.StatusOK, true, true},
		{"wrong password", `{"path":"/private/notes.html","password":"nope"}`, http.StatusUnauthorized, true, false},
		{"unprotected page", `{"path":"/guide/intro.html"}`, http.StatusOK, false, true},
		{"unknown field", `{"path":"/private/","pass":"x"}`, http.StatusBadRequest, false, false},
		{"missing path", `{"password":"x"}`, http.StatusBadRequest, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do("POST", "/api/encrypt/verify", tt.body, nil)
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusBadRequest {
				return
			}
			body := decode(t, rec)
			require.Equal(t, tt.locked, body["locked"])
			require.Equal(t, tt.ok, body["ok"])
			if tt.locked {
				require.Equal(t, "ask the team", body["hint"])
			}
		})
	}
}

func TestVerifyEncryptRateLimited(t *testing.T) {
	env := newTestEnv(t, true, func(d *deps.Deps) {
		d.VerifyBurst = 2
		d.VerifyPerMin = 1
	})

	body := `{"path":"/private/a.html","password":"guess"}`
	require.Equal(t, http.StatusUnauthorized, env.do("POST", "/api/encrypt/verify", body, nil).Code)
	require.Equal(t, http.StatusUnauthorized, env.do("POST", "/api/encrypt/verify", body, nil).Code)

	rec := env.do("POST", "/api/encrypt/verify", body, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestReload(t *testing.T) {
	env := newTestEnv(t, true, nil)

	require.Equal(t, http.StatusAccepted, env.do("POST", "/reload", "", nil).Code)
	// nothing consumes the trigger: the next one is refused
	require.Equal(t, http.StatusTooManyRequests, env.do("POST", "/reload", "", nil).Code)

	guarded := newTestEnv(t, true, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
		d.AllowedHosts = []string{"admin.example.com"}
	})
	// httptest requests come from 192.0.2.1
	require.Equal(t, http.StatusForbidden, guarded.do("POST", "/reload", "", nil).Code)
}

type fakeUsage map[string]int64

func (f fakeUsage) GetUsageStats(context.Context) (map[string]int64, error) { return f, nil }

func TestUsage(t *testing.T) {
	env := newTestEnv(t, true, nil)
	require.Equal(t, http.StatusServiceUnavailable, env.do("GET", "/usage", "", nil).Code)

	withRedis := newTestEnv(t, true, func(d *deps.Deps) {
		d.Usage = fakeUsage{"/docs/": 7, "/guide/": 7, "": 2}
	})
	rec := withRedis.do("GET", "/usage", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total    int64 `json:"total"`
		Prefixes []struct {
			Prefix string `json:"prefix"`
			Count  int64  `json:"count"`
		} `json:"prefixes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(16), body.Total)
	require.Len(t, body.Prefixes, 3)
	require.Equal(t, "/docs/", body.Prefixes[0].Prefix)
	require.Equal(t, "/guide/", body.Prefixes[1].Prefix)
	require.Equal(t, "", body.Prefixes[2].Prefix)
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t, true, nil)
	require.Equal(t, http.StatusNotFound, env.do("GET", "/metrics", "", nil).Code)

	rec := metrics.NewPrometheusRecorder(nil)
	withMetrics := newTestEnv(t, true, func(d *deps.Deps) {
		d.Metrics = rec
		d.MetricsHandler = rec.Handler()
	})
	withMetrics.do("GET", "/api/sidebar/resolve?path=/docs/a.html", "", nil)

	res := withMetrics.do("GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `navkit_sidebar_resolutions_total{strategy="auto-structure"} 1`)
}
