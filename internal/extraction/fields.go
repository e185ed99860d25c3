package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	quantityPattern    = regexp.MustCompile(`(?i)(\d{1,4}[.,]?\d*)[\s\p{Z}]*(each|pcs|box|unit|pack)?`)
	moneyPattern       = regexp.MustCompile(`\d{1,5}[.,]\d{2}`)
	indexPrefixPattern = regexp.MustCompile(`\d{1,2}[.)]?[\s\p{Z}]*`)
)

// parseDecimal parses a number that may use a comma as decimal separator.
func parseDecimal(text string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseQuantity finds the first quantity in an item block and its unit.
//
// The leading item index is skipped so it is not mistaken for the quantity.
// The unit defaults to DefaultUnit when a number is found without one. When
// nothing matches, the quantity is nil and the unit empty; when the number does
// not parse, only the quantity is left nil.
func ParseQuantity(block string) (*float64, string) {
	if loc := itemStartPattern.FindStringIndex(block); loc != nil {
		block = block[loc[1]:]
	}

	match := quantityPattern.FindStringSubmatch(block)
	if match == nil {
		return nil, ""
	}

	unit := match[2]
	if unit == "" {
		unit = DefaultUnit
	}

	value, ok := parseDecimal(match[1])
	if !ok {
		return nil, unit
	}
	return &value, unit
}

// FindMoneyTokens returns every monetary token of a block, left to right.
func FindMoneyTokens(block string) []float64 {
	tokens := moneyPattern.FindAllString(block, -1)
	values := make([]float64, 0, len(tokens))
	for _, token := range tokens {
		value, ok := parseDecimal(token)
		if !ok {
			continue
		}
		values = append(values, value)
	}
	return values
}

// AssignMoney fills the monetary fields of item by how many values were found:
//
//	4 or more: net price, net worth, VAT, gross worth (extra values ignored)
//	3:         net price, net worth, gross worth
//	2:         net worth, gross worth
//	0 or 1:    nothing
func AssignMoney(values []float64, item *LineItem) {
	at := func(i int) *float64 {
		v := values[i]
		return &v
	}

	switch n := len(values); {
	case n >= 4:
		item.NetPrice, item.NetWorth, item.VAT, item.GrossWorth = at(0), at(1), at(2), at(3)
	case n == 3:
		item.NetPrice, item.NetWorth, item.GrossWorth = at(0), at(1), at(2)
	case n == 2:
		item.NetWorth, item.GrossWorth = at(0), at(1)
	}
}

// CleanDescription strips the monetary tokens and the first index-shaped
// match from a block. The quantity and unit text is left in place.
func CleanDescription(block string) string {
	desc := moneyPattern.ReplaceAllString(block, "")
	if loc := indexPrefixPattern.FindStringIndex(desc); loc != nil {
		desc = desc[:loc[0]] + desc[loc[1]:]
	}
	return strings.TrimSpace(desc)
}

// ParseLineItem turns one item block into a LineItem. It never fails; fields
// that cannot be determined stay at their zero value.
func ParseLineItem(block string) LineItem {
	var item LineItem
	item.Qty, item.Unit = ParseQuantity(block)
	AssignMoney(FindMoneyTokens(block), &item)
	item.Description = CleanDescription(block)
	return item
}
