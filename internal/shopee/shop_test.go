package shopee_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/shopee-partner/internal/shopee"
)

func TestGetShopInfo(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/shop/get_shop_info", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "840226", q.Get("partner_id"))
			assert.Equal(t, "73000", q.Get("shop_id"))
			assert.Equal(t, "shop-token", q.Get("access_token"))
			assert.NotEmpty(t, q.Get("sign"))
			assert.NotEmpty(t, q.Get("timestamp"))
			_, _ = w.Write([]byte(
				`{"error":"","shop_name":"My Shop","region":"VN","status":"NORMAL"}`,
			))
		}),
	)
	defer srv.Close()

	store := shopee.NewMemoryTokenStore()
	require.NoError(t, store.Put(shopee.TokenRecord{AccessToken: "shop-token"}))

	c := newTestClient(t,
		shopee.WithBaseURL(srv.URL),
		shopee.WithTokenStore(store),
	)

	info, err := c.GetShopInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "My Shop", info.ShopName)
	assert.Equal(t, "VN", info.Region)
	assert.Equal(t, "NORMAL", info.Status)
	assert.NotEmpty(t, info.Raw)
}

func TestGetShopInfo_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":"error_auth","message":"invalid token"}`))
		}),
	)
	defer srv.Close()

	c := newTestClient(t, shopee.WithBaseURL(srv.URL))

	_, err := c.GetShopInfo(context.Background())
	require.Error(t, err)

	var apiErr *shopee.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "error_auth", apiErr.Code)
}
