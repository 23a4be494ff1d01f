package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gpd-enhance/auth"
	"github.com/use-agent/gpd-enhance/config"
	"github.com/use-agent/gpd-enhance/enhance"
	"github.com/use-agent/gpd-enhance/extractor"
	"github.com/use-agent/gpd-enhance/listing"
	"github.com/use-agent/gpd-enhance/models"
	"github.com/use-agent/gpd-enhance/sources"
)

const testKey = "key-a"

const acmeHTML = `<html><head><title>Acme Co</title>
<meta name="description" content="Best widgets"></head>
<body><h1>Welcome</h1></body></html>`

type testEnv struct {
	router *gin.Engine
	store  *listing.MemoryStore
	site   *httptest.Server
	hits   *atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hits := &atomic.Int64{}
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, acmeHTML)
	}))
	t.Cleanup(site.Close)

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		Auth:      config.AuthConfig{Enabled: true, APIKeys: []string{testKey}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		Store:     config.StoreConfig{Driver: "memory"},
	}
	fetchCfg := config.FetchConfig{
		Timeout:      2 * time.Second,
		MaxRedirects: 5,
		MaxBodyBytes: 1 << 20,
		Platform:     "test",
		SiteURL:      "http://localhost",
	}

	store := listing.NewMemoryStore()
	reg := sources.NewRegistry(append([]sources.Source{
		sources.NewWebsite(extractor.New(fetchCfg)),
	}, sources.Stubs()...)...)
	svc := enhance.New(store, reg, nil, cfg.Enhance)
	nonces := auth.NewNonces("test-secret", time.Hour)

	return &testEnv{
		router: NewRouter(svc, store, nonces, cfg, time.Now()),
		store:  store,
		site:   site,
		hits:   hits,
	}
}

func (e *testEnv) do(t *testing.T, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-API-Key", testKey)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) putListing(t *testing.T, id, postType, website string) {
	t.Helper()
	body := `{"post_type":"` + postType + `","title":"Acme","website":"` + website + `"}`
	w := e.do(t, http.MethodPut, "/api/v1/listings/"+id, "application/json", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (e *testEnv) nonce(t *testing.T, id, action string) string {
	t.Helper()
	w := e.do(t, http.MethodGet, "/api/v1/listings/"+id+"/nonce?action="+action, "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.NonceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Nonce
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, path, "application/x-www-form-urlencoded", form.Encode())
}

func TestHealth_NoAuth(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, config.Version, resp.Version)
	assert.Equal(t, "memory", resp.Store)
	assert.Contains(t, resp.Sources, "primary_website")
}

func TestProtectedRoutesNeedKey(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/listings/1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListing_PutAndGet(t *testing.T) {
	env := newTestEnv(t)
	env.putListing(t, "42", listing.PostTypePlace, "acme.example")

	w := env.do(t, http.MethodGet, "/api/v1/listings/42", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "acme.example", resp.Meta[listing.MetaWebsite])

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/listings/43", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/listings/abc", "", "").Code)
}

func TestScrapeInsights_SavesMeta(t *testing.T) {
	env := newTestEnv(t)
	env.putListing(t, "42", listing.PostTypePlace, env.site.URL)

	w := env.postForm(t, "/api/v1/scrape/insights", url.Values{
		"post_id":     {"42"},
		"_ajax_nonce": {env.nonce(t, "42", auth.ActionScrapeInsights)},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.InsightsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Saved)
	require.NotNil(t, resp.Data)
	assert.Equal(t, models.ExtractedFields{
		PageTitle: "Acme Co", FirstH1: "Welcome", MetaDescription: "Best widgets",
	}, *resp.Data)

	l, err := env.store.Get(t.Context(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", l.Meta[listing.MetaScrapedPageTitle])
	assert.NotEmpty(t, l.Meta[listing.MetaLastScraped])
}

func TestScrape_NonceChecks(t *testing.T) {
	env := newTestEnv(t)
	env.putListing(t, "42", listing.PostTypePlace, env.site.URL)
	env.putListing(t, "43", listing.PostTypePlace, env.site.URL)

	tests := []struct {
		name  string
		path  string
		nonce string
	}{
		{"missing", "/api/v1/scrape/insights", ""},
		{"garbage", "/api/v1/scrape/insights", "0123456789abcdef0123"},
		{"other listing", "/api/v1/scrape/insights", env.nonce(t, "43", auth.ActionScrapeInsights)},
		{"other action", "/api/v1/scrape/insights", env.nonce(t, "42", auth.ActionScrapeAllSources)},
		{"sources", "/api/v1/scrape/sources", env.nonce(t, "42", auth.ActionScrapeInsights)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.postForm(t, tt.path, url.Values{"post_id": {"42"}, "_ajax_nonce": {tt.nonce}})
			assert.Equal(t, http.StatusForbidden, w.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, models.ErrCodeAuthorization, resp.Error.Code)
			assert.Equal(t, "Nonce verification failed.", resp.Message)
		})
	}
	assert.Zero(t, env.hits.Load(), "rejected requests never fetch")
}

func TestScrapeSources_AllStubsFail(t *testing.T) {
	env := newTestEnv(t)
	env.putListing(t, "42", listing.PostTypeBusiness, env.site.URL)

	w := env.postForm(t, "/api/v1/scrape/sources", url.Values{
		"post_id":     {"42"},
		"_ajax_nonce": {env.nonce(t, "42", auth.ActionScrapeAllSources)},
	})
	require.Equal(t, http.StatusOK, w.Code, "item failures keep transport success")

	var resp struct {
		Success bool                       `json:"success"`
		Message string                     `json:"message"`
		Results map[string]json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "One or more sources failed to scrape.", resp.Message)
	assert.Len(t, resp.Results, 5)

	body := w.Body.String()
	assert.Less(t, strings.Index(body, `"google_places"`), strings.Index(body, `"google_search_top10"`))
	assert.Zero(t, env.hits.Load())
}

func TestScrapeSources_RejectsTarget(t *testing.T) {
	env := newTestEnv(t)
	env.putListing(t, "7", "post", env.site.URL)
	env.putListing(t, "42", listing.PostTypePlace, env.site.URL)

	tests := []struct {
		name   string
		id     string
		source string
		code   string
	}{
		{"wrong post type", "7", "", models.ErrCodeInvalidTarget},
		{"missing listing", "99", "", models.ErrCodeInvalidTarget},
		{"unknown source", "42", "myspace", models.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.postForm(t, "/api/v1/scrape/sources", url.Values{
				"post_id":     {tt.id},
				"source":      {tt.source},
				"_ajax_nonce": {env.nonce(t, tt.id, auth.ActionScrapeAllSources)},
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestAdminAjax_Envelope(t *testing.T) {
	env := newTestEnv(t)
	env.putListing(t, "42", listing.PostTypePlace, env.site.URL)

	w := env.postForm(t, "/wp-admin/admin-ajax.php", url.Values{
		"action":      {"gpd_enhancement_scrape_insights"},
		"post_id":     {"42"},
		"_ajax_nonce": {env.nonce(t, "42", auth.ActionScrapeInsights)},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var insights struct {
		Success bool `json:"success"`
		Data    struct {
			Message string                 `json:"message"`
			Data    models.ExtractedFields `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insights))
	assert.True(t, insights.Success)
	assert.Equal(t, "Acme Co", insights.Data.Data.PageTitle)

	w = env.postForm(t, "/wp-admin/admin-ajax.php", url.Values{
		"action":      {"gpd_enhancement_scrape_all_sources"},
		"post_id":     {"42"},
		"_ajax_nonce": {env.nonce(t, "42", auth.ActionScrapeAllSources)},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var all struct {
		Success bool `json:"success"`
		Data    struct {
			Message string                     `json:"message"`
			Results map[string]json.RawMessage `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.False(t, all.Success)
	assert.Len(t, all.Data.Results, 5)

	w = env.postForm(t, "/wp-admin/admin-ajax.php", url.Values{
		"action":  {"gpd_enhancement_scrape_insights"},
		"post_id": {"42"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"data":{`)

	w = env.postForm(t, "/wp-admin/admin-ajax.php", url.Values{"action": {"heartbeat"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBusinessProcessedHook(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/hooks/business-processed",
		"application/json", `{"post_id":42,"is_update":true}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/hooks/business-processed", "application/json", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
