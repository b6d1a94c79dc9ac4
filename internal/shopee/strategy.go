package shopee

import (
	"encoding/json"
	"fmt"
)

// searchStrategy abstracts the two pagination generations of the order-list
// API. A strategy is stateful: it tracks the position within one window's
// page sequence and must not be shared across windows.
type searchStrategy interface {
	endpoint() string
	// params returns the search parameters for the next page of win.
	params(win DateWindow, o SearchOptions) map[string]any
	// page parses a page body and advances the position.
	page(body []byte) (pageResult, error)
}

type pageResult struct {
	orders []Order
	more   bool
}

// cursorStrategy pages through /order/get_order_list with the v2 opaque
// cursor.
type cursorStrategy struct {
	cursor string
}

func (s *cursorStrategy) endpoint() string { return "/order/get_order_list" }

func (s *cursorStrategy) params(win DateWindow, o SearchOptions) map[string]any {
	return map[string]any{
		"time_range_field":         string(o.TimeRangeField),
		"time_from":                win.From.Unix(),
		"time_to":                  win.To.Unix(),
		"page_size":                o.PageSize,
		"cursor":                   s.cursor,
		"order_status":             string(o.Status),
		"response_optional_fields": o.OptionalFields,
	}
}

func (s *cursorStrategy) page(body []byte) (pageResult, error) {
	var payload struct {
		Response struct {
			More       bool    `json:"more"`
			NextCursor string  `json:"next_cursor"`
			OrderList  []Order `json:"order_list"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return pageResult{}, fmt.Errorf("decoding order list page: %w", err)
	}
	s.cursor = payload.Response.NextCursor
	return pageResult{
		orders: payload.Response.OrderList,
		more:   payload.Response.More,
	}, nil
}

// offsetStrategy pages through the legacy v1 /orders/basics endpoint with a
// numeric offset.
type offsetStrategy struct {
	offset int
}

func (s *offsetStrategy) endpoint() string { return "/orders/basics" }

func (s *offsetStrategy) params(win DateWindow, o SearchOptions) map[string]any {
	return map[string]any{
		"create_time_from":            win.From.Unix(),
		"create_time_to":              win.To.Unix(),
		"pagination_entries_per_page": o.PageSize,
		"pagination_offset":           s.offset,
	}
}

func (s *offsetStrategy) page(body []byte) (pageResult, error) {
	var payload struct {
		More   bool    `json:"more"`
		Orders []Order `json:"orders"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return pageResult{}, fmt.Errorf("decoding order page: %w", err)
	}
	s.offset += len(payload.Orders)
	return pageResult{orders: payload.Orders, more: payload.More}, nil
}

// newSearchStrategy picks the paging generation for the configured API
// version.
func (c *Client) newSearchStrategy(o SearchOptions) searchStrategy {
	if c.cfg.APIVersion == "v1" {
		return &offsetStrategy{}
	}
	return &cursorStrategy{cursor: o.Cursor}
}
