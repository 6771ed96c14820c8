package payment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StatusApproved is the only payment status that produces sales.
const StatusApproved = "approved"

// TypePayment is the notification type carrying a payment id.
const TypePayment = "payment"

// Notification is the webhook body Mercado Pago posts.
//
//	{"type": "payment", "data": {"id": "1234567890"}}
type Notification struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Data   struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Payment is the subset of GET /v1/payments/{id} the ledger needs.
type Payment struct {
	ID             json.Number    `json:"id"`
	Status         string         `json:"status"`
	AdditionalInfo AdditionalInfo `json:"additional_info"`
}

type AdditionalInfo struct {
	Items []Item `json:"items"`
}

// Item is one line of a payment. Title carries "<Product> (<Site>)".
type Item struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Quantity Quantity `json:"quantity"`
}

// Quantity accepts a JSON number or a numeric string. Anything that is not
// a whole number decodes as 0 instead of failing, so one bad line cannot
// reject the whole payment; the processor skips it as invalid.
type Quantity int

func (q *Quantity) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		*q = 0
		return nil
	}
	*q = Quantity(f)
	return nil
}
