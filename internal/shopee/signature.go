package shopee

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Signature is the result of signing a request. Timestamp is zero when the
// signed field set carried no timestamp; endpoints that echo the timestamp
// as a separate request field check for that.
type Signature struct {
	Sign      string
	Timestamp int64
}

// SignFields concatenates the given field values and returns the hex-encoded
// HMAC-SHA256 of the result, keyed by the partner secret.
//
// The concatenation order is the explicit order argument when given;
// otherwise fields are emitted in sorted key order. Endpoints with a
// canonical base string (partner_id + path + timestamp + ...) must pass the
// explicit order. Nil values coerce to the empty string.
//
// An empty field set yields the zero Signature; callers treat a blank Sign
// as "nothing to inject".
func (c *Client) SignFields(fields map[string]any, order ...string) Signature {
	if len(fields) == 0 {
		return Signature{}
	}

	keys := order
	if len(keys) == 0 {
		keys = slices.Sorted(maps.Keys(fields))
	}

	var base strings.Builder
	for _, k := range keys {
		base.WriteString(fieldString(fields[k]))
	}

	sig := Signature{Sign: c.hmacHex(base.String())}
	if ts, ok := fields["timestamp"]; ok {
		sig.Timestamp = toUnix(ts)
	}
	return sig
}

// SignPath signs partnerID + path + now + extras with the partner secret.
// Used by flows with no prior field mapping, like the authorization URL.
func (c *Client) SignPath(path string, extra ...string) Signature {
	ts := c.timestamp()
	base := strconv.FormatInt(c.cfg.PartnerID, 10) +
		path +
		strconv.FormatInt(ts, 10) +
		strings.Join(extra, "")
	return Signature{Sign: c.hmacHex(base), Timestamp: ts}
}

func (c *Client) hmacHex(base string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.PartnerKey))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

// fieldString renders a field value the way it appears in a signature base
// string or a query parameter.
func fieldString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return strconv.FormatInt(x.Unix(), 10)
	default:
		return fmt.Sprint(x)
	}
}

func toUnix(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		return int64(x)
	case time.Time:
		return x.Unix()
	default:
		return 0
	}
}
