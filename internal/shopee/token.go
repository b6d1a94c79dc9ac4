package shopee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ordersync/shopee-partner/internal/metrics"
)

// TokenRecord is one access/refresh token pair. ExpireAt already includes
// the safety margin, so a record is usable right up to its ExpireAt.
type TokenRecord struct {
	AccessToken  string    `yaml:"access_token" json:"access_token"`
	RefreshToken string    `yaml:"refresh_token" json:"refresh_token"`
	ExpireIn     int       `yaml:"expire_in" json:"expire_in"`
	ExpireAt     time.Time `yaml:"expire_at" json:"expire_at"`
}

// Valid reports whether the record can still authenticate requests at t.
func (t TokenRecord) Valid(at time.Time) bool {
	return t.AccessToken != "" && at.Before(t.ExpireAt)
}

// TokenStore owns the shop's token pair. The client reads it on every
// authenticated call and writes it only after a successful exchange or
// refresh; a failed token call never touches the stored record.
type TokenStore interface {
	Get() (TokenRecord, bool)
	Put(TokenRecord) error
}

// MemoryTokenStore is a process-local TokenStore.
type MemoryTokenStore struct {
	mu  sync.Mutex
	rec TokenRecord
	set bool
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Get returns the stored record and whether one has been stored.
func (s *MemoryTokenStore) Get() (TokenRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, s.set
}

// Put replaces the stored record wholesale.
func (s *MemoryTokenStore) Put(rec TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.set = true
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int    `json:"expire_in"`
}

// GetAccessToken exchanges the authorization code from the auth redirect
// for a token pair and stores it.
func (c *Client) GetAccessToken(ctx context.Context, code string) (TokenRecord, error) {
	return c.tokenCall(ctx, "/auth/token/get", map[string]any{"code": code})
}

// RefreshAccessToken trades the stored refresh token for a fresh pair.
func (c *Client) RefreshAccessToken(ctx context.Context) (TokenRecord, error) {
	current, ok := c.tokens.Get()
	if !ok || current.RefreshToken == "" {
		return TokenRecord{}, errors.New("shopee: no refresh token stored")
	}
	return c.tokenCall(ctx, "/auth/access_token/get", map[string]any{
		"refresh_token": current.RefreshToken,
	})
}

// tokenCall runs one exchange or refresh. The two flows are identical apart
// from the credential submitted.
func (c *Client) tokenCall(
	ctx context.Context,
	endpoint string,
	payload map[string]any,
) (TokenRecord, error) {
	path := c.commonPath + endpoint
	sig := c.SignFields(map[string]any{
		"partner_id": c.cfg.PartnerID,
		"path":       path,
		"timestamp":  c.timestamp(),
	}, "partner_id", "path", "timestamp")

	resp, err := c.Post(ctx, path, payload, &RequestOptions{
		SkipAPIPath: true,
		Params: map[string]string{
			"partner_id": strconv.FormatInt(c.cfg.PartnerID, 10),
			"sign":       sig.Sign,
			"timestamp":  strconv.FormatInt(sig.Timestamp, 10),
		},
	})
	if err != nil {
		return TokenRecord{}, err
	}

	env, err := resp.envelope()
	if err != nil {
		return TokenRecord{}, err
	}
	if env.Error != "" {
		return TokenRecord{}, c.apiError(env, resp.Body)
	}

	var body tokenResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return TokenRecord{}, fmt.Errorf("decoding token response: %w", err)
	}
	if body.AccessToken == "" {
		return TokenRecord{}, fmt.Errorf(
			"shopee: token response missing access_token (status %d)", resp.Status)
	}

	rec := TokenRecord{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpireIn:     body.ExpireIn,
		ExpireAt: c.now().
			Add(time.Duration(body.ExpireIn)*time.Second - c.expiryMargin),
	}
	if err := c.tokens.Put(rec); err != nil {
		return TokenRecord{}, fmt.Errorf("storing token: %w", err)
	}
	metrics.TokenRefreshesTotal.Inc()
	return rec, nil
}
