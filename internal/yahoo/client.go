package yahoo

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Default endpoint locations.
const (
	DefaultChartURL    = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultSearchURL   = "https://query2.finance.yahoo.com/v1/finance/search"
	DefaultCookieURL   = "https://fc.yahoo.com"
	DefaultCrumbURL    = "https://query1.finance.yahoo.com/v1/test/getcrumb"
	DefaultSummaryURL  = "https://query2.finance.yahoo.com/v10/finance/quoteSummary"
	DefaultCalendarURL = "https://query1.finance.yahoo.com/v1/finance/visualization"
	DefaultOptionsURL  = "https://query2.finance.yahoo.com/v7/finance/options"
)

// defaultUserAgent mimics a browser; the endpoints reject obvious bots.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Endpoints holds the base URLs the client talks to. Zero-valued fields fall
// back to the production defaults.
type Endpoints struct {
	Chart    string
	Search   string
	Cookie   string
	Crumb    string
	Summary  string
	Calendar string
	Options  string
}

func defaultEndpoints() Endpoints {
	return Endpoints{
		Chart:    DefaultChartURL,
		Search:   DefaultSearchURL,
		Cookie:   DefaultCookieURL,
		Crumb:    DefaultCrumbURL,
		Summary:  DefaultSummaryURL,
		Calendar: DefaultCalendarURL,
		Options:  DefaultOptionsURL,
	}
}

// Client provides access to the Yahoo Finance endpoints.
//
// Unauthenticated calls (chart, search) are stateless and safe to invoke
// concurrently. Authenticated calls share the session and are serialized
// internally only around session mutation; callers needing full concurrency
// should use independent instances.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string

	// authRetries is the number of extra attempts allowed per call after
	// an application-level invalidation signal.
	authRetries int

	session session
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client. The client should carry a cookie
// jar, or authenticated calls will not be able to present the session cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithEndpoints overrides the endpoint base URLs. Zero-valued fields keep
// their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		d := defaultEndpoints()
		if e.Chart == "" {
			e.Chart = d.Chart
		}
		if e.Search == "" {
			e.Search = d.Search
		}
		if e.Cookie == "" {
			e.Cookie = d.Cookie
		}
		if e.Crumb == "" {
			e.Crumb = d.Crumb
		}
		if e.Summary == "" {
			e.Summary = d.Summary
		}
		if e.Calendar == "" {
			e.Calendar = d.Calendar
		}
		if e.Options == "" {
			e.Options = d.Options
		}
		c.endpoints = e
	}
}

// WithAuthRetries sets the number of extra attempts allowed after an
// application-level invalidation signal (rejected cookie or crumb).
// The default is 1, matching the observed recovery behavior upstream.
func WithAuthRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.authRetries = n
		}
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		endpoints: defaultEndpoints(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger:      slog.Default(),
		userAgent:   defaultUserAgent,
		authRetries: 1,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
