package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Tilda marks connectivity checks with test=test. Such payloads are
// acknowledged but never create an order.
const (
	testMarkerKey   = "test"
	testMarkerValue = "test"
)

// defaultItemName is used when the payload carries an amount but no
// product name.
const defaultItemName = "Услуга"

// Outcome classifies the result of normalizing a webhook payload.
type Outcome int

const (
	// OutcomeOrder means the payload produced a valid order.
	OutcomeOrder Outcome = iota
	// OutcomeTestPing means the payload was a connectivity check from the sender.
	OutcomeTestPing
	// OutcomeNoOrder means no usable order could be extracted from the payload.
	OutcomeNoOrder
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeOrder:
		return "ORDER"
	case OutcomeTestPing:
		return "TEST_PING"
	case OutcomeNoOrder:
		return "NO_ORDER"
	}
	return "UNKNOWN"
}

// LineItem is a single position extracted from a webhook payload
type LineItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Period   string          `json:"period,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// IncomingOrder is the canonical order produced by Normalize.
// It is a transient value: the caller hands it to the order store,
// which owns all durable state from that point on.
type IncomingOrder struct {
	Items         []LineItem
	TotalAmount   decimal.Decimal
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ExternalRef   string
}

// parseFunc extracts line items and a total from one historical payload
// convention. It reports false when the convention does not match.
type parseFunc func(payload map[string]string) ([]LineItem, decimal.Decimal, bool)

// parseFuncs are tried in fixed priority order; the first convention that
// yields at least one line item wins and no merging happens across them.
var parseFuncs = []parseFunc{
	parseIndexedProducts,
	parseFlatProduct,
	parseBareAmount,
}

// Normalize converts a raw webhook payload (URL-encoded form fields or a
// flattened JSON object, both arriving as string key/value pairs) into a
// canonical order. It is a pure function: no I/O, no state, safe to retry
// on the identical payload.
//
// The returned order is non-nil only when the outcome is OutcomeOrder.
func Normalize(payload map[string]string) (*IncomingOrder, Outcome) {
	if payload[testMarkerKey] == testMarkerValue {
		return nil, OutcomeTestPing
	}

	var (
		items []LineItem
		total decimal.Decimal
	)
	for _, parse := range parseFuncs {
		if parsed, parsedTotal, ok := parse(payload); ok {
			items = parsed
			total = parsedTotal
			break
		}
	}

	// An order is valid only with at least one item and a positive total.
	// Anything else is an explicit non-order, never a partial record.
	if len(items) == 0 || !total.IsPositive() {
		return nil, OutcomeNoOrder
	}

	return &IncomingOrder{
		Items:         items,
		TotalAmount:   total,
		CustomerName:  firstValue(payload, "Name", "name", "payment[name]"),
		CustomerEmail: firstValue(payload, "Email", "email", "payment[email]"),
		CustomerPhone: firstValue(payload, "Phone", "phone", "payment[phone]"),
		ExternalRef:   firstValue(payload, "payment[orderid]", "orderid"),
	}, OutcomeOrder
}

// parseIndexedProducts handles the payment[products][i][...] convention.
// Indexes are consumed contiguously from 0; the first missing index stops
// the scan. The top-level payment[amount] is authoritative for the total
// when present and non-zero, otherwise the total is the sum of line amounts.
func parseIndexedProducts(payload map[string]string) ([]LineItem, decimal.Decimal, bool) {
	var items []LineItem
	sum := decimal.Zero

	for i := 0; ; i++ {
		name, ok := payload[productKey(i, "name")]
		if !ok {
			break
		}

		quantity := parseQuantity(payload[productKey(i, "quantity")])
		price := parseAmount(payload[productKey(i, "price")])

		// An explicit per-item amount wins over quantity × price.
		amount := parseAmount(payload[productKey(i, "amount")])
		if amount.IsZero() {
			amount = price.Mul(decimal.NewFromInt(int64(quantity)))
		}

		period := payload[productKey(i, "options")]
		if period == "" {
			period = payload[productKey(i, "sku")]
		}

		items = append(items, LineItem{
			Name:     name,
			Quantity: quantity,
			Price:    price,
			Period:   period,
			Amount:   amount,
		})
		sum = sum.Add(amount)
	}

	if len(items) == 0 {
		return nil, decimal.Zero, false
	}

	if declared := parseAmount(payload["payment[amount]"]); !declared.IsZero() {
		return items, declared, true
	}
	return items, sum, true
}

// parseFlatProduct handles the legacy single-item convention where the
// payload carries bare Name/Quantity/Price/Period keys.
func parseFlatProduct(payload map[string]string) ([]LineItem, decimal.Decimal, bool) {
	name := payload["Name"]
	if name == "" {
		return nil, decimal.Zero, false
	}

	quantity := parseQuantity(payload["Quantity"])
	price := parseAmount(payload["Price"])
	amount := price.Mul(decimal.NewFromInt(int64(quantity)))

	item := LineItem{
		Name:     name,
		Quantity: quantity,
		Price:    price,
		Period:   payload["Period"],
		Amount:   amount,
	}
	return []LineItem{item}, amount, true
}

// parseBareAmount handles payloads without any product structure that still
// declare a non-zero total under one of the legacy amount key spellings.
// It produces a single synthetic line item covering the whole amount.
func parseBareAmount(payload map[string]string) ([]LineItem, decimal.Decimal, bool) {
	raw := firstValue(payload, "payment[amount]", "Amount", "amount")
	if raw == "" {
		return nil, decimal.Zero, false
	}

	amount := parseAmount(raw)
	if amount.IsZero() {
		return nil, decimal.Zero, false
	}

	name := payload[productKey(0, "name")]
	if name == "" {
		name = defaultItemName
	}

	item := LineItem{
		Name:     name,
		Quantity: 1,
		Price:    amount,
		Amount:   amount,
	}
	return []LineItem{item}, amount, true
}

// productKey builds a payment[products][i][field] key
func productKey(i int, field string) string {
	return fmt.Sprintf("payment[products][%d][%s]", i, field)
}

// firstValue returns the first non-empty value among the given keys
func firstValue(payload map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(payload[key]); v != "" {
			return v
		}
	}
	return ""
}

// parseQuantity parses a quantity field. Absent, blank, or malformed
// values fall back to 1 rather than failing the whole payload.
func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// parseAmount parses a monetary field. Absent, blank, or malformed values
// degrade to zero; the overall validity invariant rejects zero-total orders
// downstream.
func parseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
