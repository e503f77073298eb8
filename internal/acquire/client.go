// Package acquire populates a target pool from Wikimedia Commons.
//
// For every acquisition query configured on a pool it searches the File:
// namespace, keeps results under an open license, downloads each image once
// and writes a sidecar next to it.
package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"psitool/internal/logger"
)

const (
	DefaultAPI = "https://commons.wikimedia.org/w/api.php"

	// DefaultUserAgent identifies the tool as Wikimedia's API policy asks.
	DefaultUserAgent = "psitool/psi-wm-downloader/1.0 (https://commons.wikimedia.org/wiki/Commons:API)"

	defaultRequestsPerSecond = 2
	defaultTimeout           = 60 * time.Second
)

// Options configure a Client. Zero values select the defaults.
type Options struct {
	API               string
	UserAgent         string
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client talks to the MediaWiki API. Every request, searches and downloads
// alike, waits on one shared limiter.
type Client struct {
	http      *http.Client
	api       string
	userAgent string
	limiter   *rate.Limiter
	log       logger.Logger
}

func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.API == "" {
		opts.API = DefaultAPI
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	log.Debug("using user agent", logger.String("user_agent", opts.UserAgent))
	return &Client{
		http:      opts.HTTPClient,
		api:       opts.API,
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		log:       log,
	}
}

// Page is one search result.
type Page struct {
	Title     string      `json:"title"`
	ImageInfo []ImageInfo `json:"imageinfo"`
}

func (p Page) String() string { return "Page(" + p.Title + ")" }

type ImageInfo struct {
	URL         string              `json:"url"`
	ExtMetadata map[string]ExtValue `json:"extmetadata"`
}

// ExtValue is one extmetadata field. Value is usually a string, sometimes
// HTML, occasionally a number.
type ExtValue struct {
	Value any `json:"value"`
}

type apiResponse struct {
	Query *struct {
		Pages map[string]Page `json:"pages"`
	} `json:"query"`
}

// Search returns up to limit File: pages matching query, ordered by title.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Page, error) {
	if limit <= 0 {
		return nil, nil
	}
	params := url.Values{
		"action":       {"query"},
		"generator":    {"search"},
		"gsrsearch":    {query},
		"gsrlimit":     {strconv.Itoa(limit)},
		"gsrnamespace": {"6"},
		"prop":         {"imageinfo"},
		"iiprop":       {"url|extmetadata"},
		"format":       {"json"},
	}
	c.log.Debug("searching", logger.String("query", query), logger.Int("limit", limit))

	body, err := c.get(ctx, c.api+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer body.Close()

	var resp apiResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("search %q: decode response: %w", query, err)
	}
	if resp.Query == nil {
		return nil, nil
	}
	pages := make([]Page, 0, len(resp.Query.Pages))
	for _, p := range resp.Query.Pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Title < pages[j].Title })
	return pages, nil
}

// get performs a rate-limited GET. The caller closes the body.
func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}
