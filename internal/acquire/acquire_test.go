package acquire

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psitool/internal/core"
)

func TestValidLicense(t *testing.T) {
	valid := []string{"CC0", "cc0", "Public domain", "public-domain", "CC BY", "CC BY 4.0", "cc-by-4.0", "CC BY 2", "CC-BY 3.0"}
	for _, l := range valid {
		assert.True(t, ValidLicense(l), "license %q", l)
	}
	invalid := []string{"", "CC BY-SA 4.0", "CC BY-NC 2.0", "GFDL", "CC BY 4.0 international", "CC BY 4.", "Copyrighted"}
	for _, l := range invalid {
		assert.False(t, ValidLicense(l), "license %q", l)
	}
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "plain", htmlToText("  plain "))
	assert.Equal(t, "A white lighthouse on rocks", htmlToText(`<div class="description">A <b>white</b> lighthouse<br>on   rocks</div>`))
	assert.Equal(t, "Tom & Jerry", htmlToText("Tom &amp; Jerry"))
	assert.Equal(t, 42.0, metaText(42.0))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Some_picture.jpg", fileName("File:Some picture.jpg"))
	assert.Equal(t, "a_b.jpg", fileName("File:a/b.jpg"))
	assert.Equal(t, "_", fileName("File:.."))
}

type commons struct {
	server    *httptest.Server
	downloads atomic.Int32

	mu     sync.Mutex
	agents []string
}

func newCommons(t *testing.T) *commons {
	t.Helper()
	c := &commons{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.agents = append(c.agents, r.UserAgent())
		c.mu.Unlock()
		q := r.URL.Query()
		if q.Get("generator") != "search" || q.Get("gsrnamespace") != "6" || q.Get("iiprop") != "url|extmetadata" {
			http.Error(w, "bad params", http.StatusBadRequest)
			return
		}
		if q.Get("gsrsearch") == "nothing" {
			_, _ = w.Write([]byte(`{"batchcomplete":""}`))
			return
		}
		base := c.server.URL
		resp := map[string]any{"query": map[string]any{"pages": map[string]any{
			"2": map[string]any{
				"title": "File:Light house.jpg",
				"imageinfo": []any{map[string]any{
					"url": base + "/files/lighthouse.jpg",
					"extmetadata": map[string]any{
						"LicenseShortName": map[string]any{"value": "CC BY 4.0"},
						"ImageDescription": map[string]any{"value": "<p>A <i>tall</i> tower</p>"},
						"DateTimeOriginal": map[string]any{"value": "2001-02-03"},
						"Artist":           map[string]any{"value": "Someone"},
						"ObjectName":       map[string]any{"value": "Tower"},
					},
				}},
			},
			"1": map[string]any{
				"title": "File:Closed.jpg",
				"imageinfo": []any{map[string]any{
					"url": base + "/files/closed.jpg",
					"extmetadata": map[string]any{
						"LicenseShortName": map[string]any{"value": "CC BY-SA 4.0"},
					},
				}},
			},
			"3": map[string]any{"title": "File:No info.jpg"},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		c.downloads.Add(1)
		_, _ = w.Write([]byte("jpeg:" + r.URL.Path))
	})
	c.server = httptest.NewServer(mux)
	t.Cleanup(c.server.Close)
	return c
}

func (c *commons) client() *Client {
	return NewClient(Options{API: c.server.URL + "/api", UserAgent: "psitool-test/1", RequestsPerSecond: 1000}, nil)
}

func intp(n int) *int { return &n }

func TestRun_SavesAllowedImagesWithSidecars(t *testing.T) {
	srv := newCommons(t)
	dir := filepath.Join(t.TempDir(), "pool")
	pool := core.TargetPool{
		Name: "towers",
		Path: dir,
		Wiki: &core.WikiConfig{Queries: []core.QueryConfig{{Query: "lighthouse"}}},
	}

	sum, err := srv.client().Run(context.Background(), pool, nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{Queries: 1, Results: 3, Saved: 1, Downloaded: 1, Skipped: 2}, sum)

	img := filepath.Join(dir, "Light_house.jpg")
	data, err := os.ReadFile(img)
	require.NoError(t, err)
	assert.Equal(t, "jpeg:/files/lighthouse.jpg", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "Closed.jpg"))

	sc, err := core.LoadSidecar(core.SidecarPath(img))
	require.NoError(t, err)
	assert.Equal(t, "lighthouse", sc.Query)
	assert.NotNil(t, sc.Frontloading)
	assert.Equal(t, "A tall tower", sc.ImageDescription)
	assert.Equal(t, "2001-02-03", sc.DatetimeOriginal)
	assert.Equal(t, "CC BY 4.0", sc.License)
	assert.Equal(t, "Someone", sc.LicenseMeta["Artist"])
	assert.Contains(t, sc.LicenseMeta, "LicenseShortName")
	assert.Equal(t, "Tower", sc.ImgMetadata["ObjectName"])
	assert.NotContains(t, sc.ImgMetadata, "Artist")

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.NotEmpty(t, srv.agents)
	for _, ua := range srv.agents {
		assert.Equal(t, "psitool-test/1", ua)
	}
}

func TestRun_ExistingImageIsNotDownloadedAgain(t *testing.T) {
	srv := newCommons(t)
	dir := t.TempDir()
	pool := core.TargetPool{Name: "towers", Path: dir,
		Wiki: &core.WikiConfig{Queries: []core.QueryConfig{{Query: "lighthouse"}}}}

	_, err := srv.client().Run(context.Background(), pool, nil)
	require.NoError(t, err)
	sum, err := srv.client().Run(context.Background(), pool, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), srv.downloads.Load())
	assert.Equal(t, 1, sum.Saved)
	assert.Zero(t, sum.Downloaded)
}

func TestRun_LimitOverrideAndEmptyResults(t *testing.T) {
	srv := newCommons(t)
	pool := core.TargetPool{Name: "p", Path: t.TempDir(),
		Wiki: &core.WikiConfig{Queries: []core.QueryConfig{{Query: "nothing"}, {Query: "lighthouse"}}}}

	sum, err := srv.client().Run(context.Background(), pool, intp(0))
	require.NoError(t, err)
	assert.Equal(t, Summary{Queries: 2}, sum, "limit 0 skips every search")

	sum, err = srv.client().Run(context.Background(), pool, intp(5))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Queries)
	assert.Equal(t, 1, sum.Saved)
}

func TestSearch_HTTPErrorAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Options{API: srv.URL, RequestsPerSecond: 1000}, nil)
	pool := core.TargetPool{Name: "p", Path: t.TempDir(),
		Wiki: &core.WikiConfig{Queries: []core.QueryConfig{{Query: "x"}}}}
	_, err := c.Run(context.Background(), pool, nil)
	assert.Error(t, err)
}
