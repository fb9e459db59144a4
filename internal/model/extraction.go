package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractionResult is the structured order facts pulled out of an email by
// the oracle. This is untrusted output: every field may be absent, mistyped,
// or internally inconsistent, and must pass validation before use.
type ExtractionResult struct {
	Success      bool          `json:"extraction_success"`
	Vendor       string        `json:"vendor,omitempty"`
	CustomerName string        `json:"customer_name,omitempty"`
	OrderNumber  string        `json:"order_number,omitempty"`
	OrderStatus  string        `json:"order_status,omitempty"`
	DeliveryInfo DeliveryInfo  `json:"delivery_info,omitempty"`
	Items        []RawLineItem `json:"items,omitempty"`
	OrderTotal   *Money        `json:"order_total,omitempty"`
	Confidence   string        `json:"confidence,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// DeliveryInfo carries the delivery facts the oracle found. ExpectedDate is
// free-form text (a date or a day name), never parsed to a date type.
type DeliveryInfo struct {
	Location          string `json:"location,omitempty"`
	ExpectedDate      string `json:"expected_date,omitempty"`
	StatusDescription string `json:"status_description,omitempty"`
}

// RawLineItem is one line item as reported by the oracle. Price may embed a
// currency symbol ("AED 45.00") and may arrive as a JSON number or string.
type RawLineItem struct {
	ItemName string     `json:"item_name,omitempty"`
	Quantity FlexInt    `json:"quantity,omitempty"`
	Price    FlexString `json:"price,omitempty"`
	Currency string     `json:"currency,omitempty"`
}

// Money is an amount/currency pair as reported by the oracle.
type Money struct {
	Amount   FlexString `json:"amount"`
	Currency string     `json:"currency"`
}

// FlexString accepts either a JSON string or a JSON number. The oracle is
// instructed to emit strings but is observed to emit bare numbers too.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// FlexInt accepts a JSON number (integer or float) or a numeric string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexInt(int(v))
	return nil
}
