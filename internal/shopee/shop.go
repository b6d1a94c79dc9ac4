package shopee

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// ShopInfo is the profile of the linked shop. Raw keeps the full record.
type ShopInfo struct {
	ShopName string          `json:"shop_name"`
	Region   string          `json:"region"`
	Status   string          `json:"status"`
	Raw      json.RawMessage `json:"-"`
}

// GetShopInfo fetches the linked shop's profile.
func (c *Client) GetShopInfo(ctx context.Context) (*ShopInfo, error) {
	path := c.commonPath + "/shop/get_shop_info"
	token, _ := c.tokens.Get()

	sig := c.SignFields(map[string]any{
		"partner_id":   c.cfg.PartnerID,
		"path":         path,
		"timestamp":    c.timestamp(),
		"access_token": token.AccessToken,
		"shop_id":      c.cfg.ShopID,
	}, signOrderShop...)

	resp, err := c.Get(ctx, path, nil, &RequestOptions{
		SkipAPIPath: true,
		Params: map[string]string{
			"partner_id":   strconv.FormatInt(c.cfg.PartnerID, 10),
			"shop_id":      strconv.FormatInt(c.cfg.ShopID, 10),
			"access_token": token.AccessToken,
			"sign":         sig.Sign,
			"timestamp":    strconv.FormatInt(sig.Timestamp, 10),
		},
	})
	if err != nil {
		return nil, err
	}

	env, err := resp.envelope()
	if err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, c.apiError(env, resp.Body)
	}

	info := &ShopInfo{}
	if err := json.Unmarshal(resp.Body, info); err != nil {
		return nil, fmt.Errorf("decoding shop info: %w", err)
	}
	info.Raw = resp.Body
	return info, nil
}
