package shopee

import "encoding/json"

// OrderStatus filters order searches.
type OrderStatus string

const (
	OrderStatusUnpaid         OrderStatus = "UNPAID"
	OrderStatusReadyToShip    OrderStatus = "READY_TO_SHIP"
	OrderStatusProcessed      OrderStatus = "PROCESSED"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusInCancel       OrderStatus = "IN_CANCEL"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusInvoicePending OrderStatus = "INVOICE_PENDING"
)

// TimeRangeField selects which timestamp a date-range search filters on.
type TimeRangeField string

const (
	TimeRangeCreate TimeRangeField = "create_time"
	TimeRangeUpdate TimeRangeField = "update_time"
)

// Order is one entry of an order-list page. Raw keeps the full JSON entry
// so any requested optional response fields survive.
type Order struct {
	OrderSN string
	Status  OrderStatus
	Raw     json.RawMessage
}

// UnmarshalJSON extracts the identifying fields and retains the raw entry.
func (o *Order) UnmarshalJSON(data []byte) error {
	var head struct {
		OrderSN string      `json:"order_sn"`
		Status  OrderStatus `json:"order_status"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	o.OrderSN = head.OrderSN
	o.Status = head.Status
	o.Raw = append(o.Raw[:0], data...)
	return nil
}

// MarshalJSON emits the retained raw entry when present.
func (o Order) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	return json.Marshal(struct {
		OrderSN string      `json:"order_sn"`
		Status  OrderStatus `json:"order_status,omitempty"`
	}{o.OrderSN, o.Status})
}

// SearchOptions mirror the server-side search parameters of an order-list
// request. Zero values fall back to the documented defaults.
type SearchOptions struct {
	TimeRangeField TimeRangeField
	Status         OrderStatus
	PageSize       int
	Cursor         string
	OptionalFields string
}

// FetchOptions tune a windowed order retrieval. A nil *FetchOptions selects
// all defaults.
type FetchOptions struct {
	// Retries is the number of extra attempts per page. Nil selects the
	// client default; an explicit zero means a single attempt per page.
	Retries *int
	Search  SearchOptions
}
