package shopee_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/shopee-partner/internal/shopee"
)

func newTestClient(t *testing.T, opts ...shopee.Option) *shopee.Client {
	t.Helper()

	c, err := shopee.New(shopee.Config{
		PartnerID:  840226,
		PartnerKey: "test-partner-key",
		ShopID:     73000,
	}, opts...)
	require.NoError(t, err)
	return c
}

func hmacHex(key, base string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignFields_CanonicalOrder(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	sig := c.SignFields(map[string]any{
		"partner_id": int64(840226),
		"path":       "/api/v2/auth/token/get",
		"timestamp":  int64(1655290800),
	}, "partner_id", "path", "timestamp")

	want := hmacHex("test-partner-key", "840226/api/v2/auth/token/get1655290800")
	assert.Equal(t, want, sig.Sign)
	assert.Equal(t, int64(1655290800), sig.Timestamp)
}

func TestSignFields_Deterministic(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	fields := map[string]any{
		"partner_id": int64(840226),
		"path":       "/api/v2/order/get_order_list",
		"timestamp":  int64(1655290800),
	}

	first := c.SignFields(fields, "partner_id", "path", "timestamp")
	second := c.SignFields(fields, "partner_id", "path", "timestamp")
	assert.Equal(t, first, second)
}

func TestSignFields_OrderChangesDigest(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	fields := map[string]any{"a": "x", "b": "y"}

	forward := c.SignFields(fields, "a", "b")
	reverse := c.SignFields(fields, "b", "a")
	assert.NotEqual(t, forward.Sign, reverse.Sign)
}

func TestSignFields_SortedKeysByDefault(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	sig := c.SignFields(map[string]any{"b": "y", "a": "x"})

	assert.Equal(t, hmacHex("test-partner-key", "xy"), sig.Sign)
	assert.Zero(t, sig.Timestamp)
}

func TestSignFields_EmptySetYieldsZero(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	assert.Equal(t, shopee.Signature{}, c.SignFields(nil))
	assert.Equal(t, shopee.Signature{}, c.SignFields(map[string]any{}))
}

func TestSignFields_ValueCoercion(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	at := time.Unix(1655290800, 0)
	sig := c.SignFields(map[string]any{
		"flag": true,
		"n":    42,
		"nul":  nil,
		"when": at,
	}, "flag", "n", "nul", "when")

	assert.Equal(t, hmacHex("test-partner-key", "true421655290800"), sig.Sign)
}

func TestSignPath(t *testing.T) {
	t.Parallel()

	now := time.Unix(1655290800, 0)
	c := newTestClient(t, shopee.WithNowFunc(func() time.Time { return now }))

	sig := c.SignPath("/api/v2/shop/auth_partner")
	want := hmacHex("test-partner-key", "840226/api/v2/shop/auth_partner1655290800")
	assert.Equal(t, want, sig.Sign)
	assert.Equal(t, int64(1655290800), sig.Timestamp)
}

func TestSignPath_ExtrasAppended(t *testing.T) {
	t.Parallel()

	now := time.Unix(1655290800, 0)
	c := newTestClient(t, shopee.WithNowFunc(func() time.Time { return now }))

	plain := c.SignPath("/p")
	extra := c.SignPath("/p", "token", "73000")
	assert.NotEqual(t, plain.Sign, extra.Sign)

	want := hmacHex("test-partner-key", "840226/p1655290800token73000")
	assert.Equal(t, want, extra.Sign)
}
