package shopee

import (
	"encoding/json"
	"fmt"
)

// Known raw server messages that get localized guidance attached. The
// server's structured error code stays the primary signal; this matching is
// best-effort enrichment.
const (
	msgShopNotLinked = "partner and shop has no linked"
	msgNoShopID      = "no shopid"
)

// APIError is an application-level error reported in a well-formed Partner
// API response body.
type APIError struct {
	Code      string
	Message   string
	Name      string // localized category for known conditions, else empty
	RequestID string
	Raw       json.RawMessage // full response body for diagnostics
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("shopee [%s]: %s %s", e.Code, e.Name, e.Message)
	}
	return fmt.Sprintf("shopee [%s]: %s", e.Code, e.Message)
}

// Retryable reports whether the condition is transient enough to retry.
func (e *APIError) Retryable() bool {
	switch e.Code {
	case "error_server", "error_exceed_limit":
		return true
	}
	return false
}

// apiError builds an APIError from a decoded envelope, attaching localized
// guidance for the known link and shop-id failures. The shop-not-linked
// message embeds a fresh authorization URL the shop owner can follow.
func (c *Client) apiError(env *envelope, raw []byte) *APIError {
	err := &APIError{
		Code:      env.Error,
		Message:   env.Message,
		RequestID: env.RequestID,
		Raw:       raw,
	}
	switch env.Message {
	case msgShopNotLinked:
		err.Name = "Shop của bạn chưa liên kết với hệ thống!"
		err.Message = fmt.Sprintf(
			"Vui lòng vào link này %s và đăng nhập để hệ thống liên kết với Shop của bạn!",
			c.BuildAuthURL(false),
		)
	case msgNoShopID:
		err.Name = "Id của shop không tồn tại!"
		err.Message = "Vui lòng kiểm tra lại thông tin của bạn!"
	}
	return err
}
