// Package shopee implements a client for the Shopee Partner API: HMAC-SHA256
// request signing, shop authorization and token lifecycle, and windowed,
// paginated order retrieval across both API generations (v2 cursor paging
// and legacy v1 offset paging).
package shopee

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Environment selects between the production and sandbox partner hosts.
type Environment string

const (
	EnvProduction Environment = "production"
	EnvSandbox    Environment = "sandbox"
)

const (
	defaultHost         = "shopeemobile.com"
	defaultAPIPrefix    = "api"
	defaultAPIVersion   = "v2"
	defaultRetryCount   = 2
	defaultWindowDays   = 15
	defaultExpiryMargin = 500 * time.Second
)

// Config holds the partner credentials and API addressing for one shop.
type Config struct {
	PartnerID  int64
	PartnerKey string
	ShopID     int64

	// APIPrefix and APIVersion form the common API path, default /api/v2.
	// APIVersion "v1" switches order retrieval to legacy offset paging.
	APIPrefix  string
	APIVersion string

	Environment Environment
	RedirectURI string

	// Host is the partner API domain without the "partner." prefix.
	Host string
}

// Doer performs a single HTTP request. *http.Client satisfies it; tests and
// callers with custom transports inject their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a single-shop, single-session Shopee Partner API client. Its
// retrieval loops are strictly sequential because the upstream pagination
// cursor is stateful per call sequence; concurrent fetches for multiple
// shops need separate Client instances.
type Client struct {
	cfg        Config
	commonPath string
	baseURL    string // test override, empty in production

	http    Doer
	log     *slog.Logger
	verbose bool
	nowFunc func() time.Time

	limiter *RateLimiter
	tokens  TokenStore

	retries      int
	windowDays   int
	expiryMargin time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithLogger sets the logger. The client only logs at Warn and, when verbose
// logging is on, Debug.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithVerboseLogging enables debug logging of every outgoing request and raw
// response. Off by default; when off the logging path is never entered.
func WithVerboseLogging() Option {
	return func(c *Client) { c.verbose = true }
}

// WithNowFunc overrides the time source for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Client) { c.nowFunc = f }
}

// WithRateLimiter gates every dispatched request through r.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) { c.limiter = r }
}

// WithTokenStore sets the caller-owned store for the shop's token pair.
// Defaults to an in-memory store scoped to this client.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// WithRetryCount sets the default number of extra attempts per order page.
func WithRetryCount(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithWindowDays sets the maximum days per order-list call. The API rejects
// ranges above 15 days; lower values are occasionally useful for busy shops.
func WithWindowDays(days int) Option {
	return func(c *Client) { c.windowDays = days }
}

// WithExpiryMargin sets the safety margin subtracted from a token's reported
// lifetime, cushioning clock skew between us and the API.
func WithExpiryMargin(d time.Duration) Option {
	return func(c *Client) { c.expiryMargin = d }
}

// WithBaseURL replaces the derived partner host entirely. Test hook.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// New creates a Client. Missing partner credentials are the one hard,
// immediate failure; everything after construction surfaces as error values.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.PartnerID == 0 {
		return nil, errors.New("shopee: partner id is required")
	}
	if cfg.PartnerKey == "" {
		return nil, errors.New("shopee: partner key is required")
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = defaultAPIPrefix
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Environment == "" {
		cfg.Environment = EnvProduction
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}

	c := &Client{
		cfg:          cfg,
		commonPath:   "/" + cfg.APIPrefix + "/" + cfg.APIVersion,
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          slog.Default(),
		nowFunc:      time.Now,
		tokens:       NewMemoryTokenStore(),
		retries:      defaultRetryCount,
		windowDays:   defaultWindowDays,
		expiryMargin: defaultExpiryMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the partner API origin, optionally with the common
// /{prefix}/{version} path appended.
func (c *Client) BaseURL(includeAPIPath bool) string {
	u := c.baseURL
	if u == "" {
		host := "partner." + c.cfg.Host
		if c.cfg.Environment == EnvSandbox {
			host = "partner.test-stable." + c.cfg.Host
		}
		u = "https://" + host
	}
	if includeAPIPath {
		u += c.commonPath
	}
	return u
}

// CommonPath returns the /{prefix}/{version} path segment.
func (c *Client) CommonPath() string {
	return c.commonPath
}

// Credentials returns the currently stored token record, if any.
func (c *Client) Credentials() (TokenRecord, bool) {
	return c.tokens.Get()
}

// BuildAuthURL returns the URL a shop owner must visit to link their shop
// with this partner application, or to cancel the link.
func (c *Client) BuildAuthURL(cancel bool) string {
	endpoint := "/shop/auth_partner"
	if cancel {
		endpoint = "/shop/cancel_auth_partner"
	}
	path := c.commonPath + endpoint
	sig := c.SignPath(path)

	q := url.Values{}
	q.Set("partner_id", strconv.FormatInt(c.cfg.PartnerID, 10))
	q.Set("redirect", c.cfg.RedirectURI)
	q.Set("sign", sig.Sign)
	q.Set("timestamp", strconv.FormatInt(sig.Timestamp, 10))

	return c.BaseURL(false) + path + "?" + q.Encode()
}

func (c *Client) now() time.Time {
	return c.nowFunc()
}

func (c *Client) timestamp() int64 {
	return c.now().Unix()
}
