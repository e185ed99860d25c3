package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/zombor/invoice-scanner/internal/extraction"
)

// Totals sums the net and gross worth of all line items. Items where a value
// is absent contribute nothing to that total. Values are rounded to cents
// before summing so float noise does not accumulate.
func Totals(items []extraction.LineItem) (net, gross decimal.Decimal) {
	for _, item := range items {
		net = net.Add(cents(item.NetWorth))
		gross = gross.Add(cents(item.GrossWorth))
	}
	return net, gross
}

func cents(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v).Round(2)
}
