package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gpd-enhance/config"
	"github.com/use-agent/gpd-enhance/models"
)

const acmeHTML = `<html><head><title> Acme Co </title><meta name="description" content="We sell widgets."></head><body><h1>Welcome</h1></body></html>`

func testConfig() config.FetchConfig {
	return config.FetchConfig{
		Timeout:      2 * time.Second,
		MaxRedirects: 5,
		MaxBodyBytes: 1 << 20,
		Platform:     "gpd-enhance/test",
		SiteURL:      "https://directory.example",
	}
}

func serveHTML(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
}

func TestExtract_AcmeScenario(t *testing.T) {
	srv := serveHTML(acmeHTML)
	defer srv.Close()

	res := New(testConfig()).Extract(context.Background(), srv.URL)

	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Data)
	assert.Equal(t, models.ExtractedFields{
		PageTitle:       "Acme Co",
		FirstH1:         "Welcome",
		MetaDescription: "We sell widgets.",
	}, *res.Data)
	assert.Contains(t, res.Message, "Successfully scraped data from "+srv.URL)
	assert.Empty(t, res.Code)
	assert.NotNil(t, res.Domains)
}

func TestExtract_MissingFieldsAreIndependent(t *testing.T) {
	tests := []struct {
		name string
		html string
		want models.ExtractedFields
	}{
		{
			name: "title only",
			html: `<html><head><title>Only Title</title></head><body><p>x</p></body></html>`,
			want: models.ExtractedFields{PageTitle: "Only Title", FirstH1: models.NotFound, MetaDescription: models.NotFound},
		},
		{
			name: "h1 only",
			html: `<body><h1>  Heading  </h1><h1>Second</h1></body>`,
			want: models.ExtractedFields{PageTitle: models.NotFound, FirstH1: "Heading", MetaDescription: models.NotFound},
		},
		{
			name: "meta only",
			html: `<head><meta name="description" content="  Dive shop in Cozumel "></head>`,
			want: models.ExtractedFields{PageTitle: models.NotFound, FirstH1: models.NotFound, MetaDescription: "Dive shop in Cozumel"},
		},
		{
			name: "meta without content attribute",
			html: `<head><title>T</title><meta name="description"></head><body><h1>H</h1></body>`,
			want: models.ExtractedFields{PageTitle: "T", FirstH1: "H", MetaDescription: models.NotFound},
		},
		{
			name: "nested heading markup",
			html: `<body><h1>Blue <span>Water</span> Divers</h1></body>`,
			want: models.ExtractedFields{PageTitle: models.NotFound, FirstH1: "Blue Water Divers", MetaDescription: models.NotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveHTML(tt.html)
			defer srv.Close()

			res := New(testConfig()).Extract(context.Background(), srv.URL)
			require.True(t, res.Success, res.Message)
			assert.Equal(t, tt.want, *res.Data)
		})
	}
}

func TestExtract_NothingFound(t *testing.T) {
	srv := serveHTML(`<html><body><div id="root"></div><script src="app.js"></script></body></html>`)
	defer srv.Close()

	res := New(testConfig()).Extract(context.Background(), srv.URL)

	require.True(t, res.Success)
	assert.Equal(t, models.ExtractedFields{
		PageTitle:       models.NotFound,
		FirstH1:         models.NotFound,
		MetaDescription: models.NotFound,
	}, *res.Data)
	assert.Contains(t, res.Message, "JavaScript rendering")
}

func TestExtract_MalformedMarkupIsTolerated(t *testing.T) {
	srv := serveHTML(`<html><body><h1> Broken <b>markup</h1><p>unclosed <div></span>`)
	defer srv.Close()

	res := New(testConfig()).Extract(context.Background(), srv.URL)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Broken markup", res.Data.FirstH1)
}

func TestExtract_EmptyURLMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	res := New(testConfig()).Extract(context.Background(), "")

	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeConfigMissing, res.Code)
	assert.Regexp(t, regexp.MustCompile(`(?i)website.*not set`), res.Message)
	assert.Nil(t, res.Data)
	assert.Zero(t, hits.Load())
}

func TestExtract_InvalidURL(t *testing.T) {
	res := New(testConfig()).Extract(context.Background(), "not a url")

	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeInvalidURL, res.Code)
	assert.Contains(t, res.Message, "not a url")
}

func TestExtract_BadStatusNeverParses(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusNoContent} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				if status != http.StatusNoContent {
					fmt.Fprint(w, acmeHTML)
				}
			}))
			defer srv.Close()

			res := New(testConfig()).Extract(context.Background(), srv.URL)

			assert.False(t, res.Success)
			assert.Equal(t, models.ErrCodeFetchFailed, res.Code)
			assert.Contains(t, res.Message, "Status code: "+strconv.Itoa(status))
			assert.Contains(t, res.Message, srv.URL)
			assert.Nil(t, res.Data)
		})
	}
}

func TestExtract_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := New(testConfig()).Extract(context.Background(), srv.URL)

	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeEmptyContent, res.Code)
}

func TestExtract_TransportFailure(t *testing.T) {
	srv := serveHTML(acmeHTML)
	url := srv.URL
	srv.Close()

	res := New(testConfig()).Extract(context.Background(), url)

	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeFetchFailed, res.Code)
	assert.True(t, strings.HasPrefix(res.Message, "Failed to fetch website: "), res.Message)
}

func TestExtract_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	res := New(cfg).Extract(context.Background(), srv.URL)

	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeFetchFailed, res.Code)
}

func redirectChain() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/r/"))
		if n > 0 {
			http.Redirect(w, r, "/r/"+strconv.Itoa(n-1), http.StatusFound)
			return
		}
		fmt.Fprint(w, acmeHTML)
	}))
}

func TestExtract_FollowsUpToFiveRedirects(t *testing.T) {
	srv := redirectChain()
	defer srv.Close()

	res := New(testConfig()).Extract(context.Background(), srv.URL+"/r/5")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Acme Co", res.Data.PageTitle)

	res = New(testConfig()).Extract(context.Background(), srv.URL+"/r/6")
	assert.False(t, res.Success)
	assert.Equal(t, models.ErrCodeFetchFailed, res.Code)
	assert.Contains(t, res.Message, "redirects")
}

func TestExtract_SendsDescriptiveUserAgent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.UserAgent())
		fmt.Fprint(w, acmeHTML)
	}))
	defer srv.Close()

	cfg := testConfig()
	New(cfg).Extract(context.Background(), srv.URL)

	assert.Equal(t, cfg.UserAgent(), got.Load())
	assert.Contains(t, got.Load(), "GPD Data Enhancement Plugin/"+config.Version)
}

func TestExtract_BareHostGetsScheme(t *testing.T) {
	srv := serveHTML(acmeHTML)
	defer srv.Close()

	hostPort := strings.TrimPrefix(srv.URL, "http://")
	res := New(testConfig()).Extract(context.Background(), hostPort)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Welcome", res.Data.FirstH1)
}
