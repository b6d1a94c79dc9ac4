package shopee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/ordersync/shopee-partner/internal/metrics"
)

// RequestOptions tune a single dispatched request.
type RequestOptions struct {
	// SkipAPIPath omits the common /{prefix}/{version} segment from the URL.
	// Used by endpoints whose path already carries its own versioned prefix.
	SkipAPIPath bool

	// Params are extra query parameters. On GET they are merged over the
	// payload-derived query and win on conflict; on other verbs they are the
	// only query parameters.
	Params map[string]string

	// SignFields, when non-empty, are signed with SignOrder and the
	// resulting sign (and timestamp, if one was signed) injected into the
	// outgoing payload.
	SignFields map[string]any
	SignOrder  []string
}

// Response is the raw result of a dispatched request. Application-level
// errors travel in the body envelope regardless of HTTP status, so the
// dispatcher hands the body back untouched and callers decode it.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// envelope is the common wrapper of Partner API response bodies.
type envelope struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Response  json.RawMessage `json:"response"`
}

func (r *Response) envelope() (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(r.Body, &env); err != nil {
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}
	return &env, nil
}

// MakeRequest dispatches one request to the partner API.
//
// The caller's payload is never mutated: it is cloned, then partner_id and
// shop_id are injected, along with sign and timestamp when SignFields were
// given. GET sends the payload as query parameters; every other verb sends
// it as a JSON body. The returned error covers transport failures only —
// server-reported API errors stay in the Response body for callers to
// classify.
func (c *Client) MakeRequest(
	ctx context.Context,
	endpoint string,
	payload map[string]any,
	method string,
	opts *RequestOptions,
) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.DailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.DailyUsage.Set(float64(c.limiter.DailyCount()))
	}

	data := maps.Clone(payload)
	if data == nil {
		data = map[string]any{}
	}
	data["partner_id"] = c.cfg.PartnerID
	if c.cfg.ShopID != 0 {
		if _, ok := data["shop_id"]; !ok {
			data["shop_id"] = c.cfg.ShopID
		}
	}
	if len(opts.SignFields) > 0 {
		sig := c.SignFields(opts.SignFields, opts.SignOrder...)
		if sig.Sign != "" {
			data["sign"] = sig.Sign
			if sig.Timestamp != 0 {
				data["timestamp"] = sig.Timestamp
			}
		}
	}

	u := c.BaseURL(false)
	if !opts.SkipAPIPath {
		u += c.commonPath
	}
	u += endpoint

	query := url.Values{}
	var body io.Reader
	if method == http.MethodGet {
		for k, v := range data {
			query.Set(k, fieldString(v))
		}
		for k, v := range opts.Params {
			query.Set(k, v)
		}
	} else {
		for k, v := range opts.Params {
			query.Set(k, v)
		}
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	reqID := uuid.NewString()
	if c.verbose {
		c.log.Debug("partner API request",
			"id", reqID, "method", method, "url", u)
	}

	start := time.Now()
	metrics.APICallsTotal.WithLabelValues(endpoint).Inc()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.TransportErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("executing %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TransportErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	metrics.RequestDuration.WithLabelValues(endpoint).
		Observe(time.Since(start).Seconds())

	if c.verbose {
		c.log.Debug("partner API response",
			"id", reqID,
			"status", resp.StatusCode,
			"body", string(raw))
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   raw,
	}, nil
}

// Get dispatches a GET request.
func (c *Client) Get(
	ctx context.Context,
	endpoint string,
	payload map[string]any,
	opts *RequestOptions,
) (*Response, error) {
	return c.MakeRequest(ctx, endpoint, payload, http.MethodGet, opts)
}

// Post dispatches a POST request.
func (c *Client) Post(
	ctx context.Context,
	endpoint string,
	payload map[string]any,
	opts *RequestOptions,
) (*Response, error) {
	return c.MakeRequest(ctx, endpoint, payload, http.MethodPost, opts)
}
