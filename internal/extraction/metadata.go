package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minInvoiceNumberDigits is the shortest digit run accepted as an invoice number
const minInvoiceNumberDigits = 6

// datePatterns are tried in order for every line; day-first wins over year-first.
// A three digit year matches as its first two digits ("1/2/202" gives "1/2/20").
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-](?:\d{4}|\d{2})`),
	regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`),
}

// IsInvoiceNumberLine reports whether a line mentions "invoice" and holds at
// least one digit.
func IsInvoiceNumberLine(line string) bool {
	if !strings.Contains(strings.ToLower(line), "invoice") {
		return false
	}
	return strings.IndexFunc(line, unicode.IsDigit) >= 0
}

// InvoiceNumberFromLine returns the digits of line in order, and whether
// there are enough of them to be an invoice number. Only decimal digits (Nd)
// count; superscripts such as "²" do not.
func InvoiceNumberFromLine(line string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, line)
	return digits, utf8.RuneCountInString(digits) >= minInvoiceNumberDigits
}

// FindInvoiceNumber returns the digits of the first qualifying line, or NotFound.
func FindInvoiceNumber(lines []string) string {
	for _, line := range lines {
		if !IsInvoiceNumberLine(line) {
			continue
		}
		if number, ok := InvoiceNumberFromLine(line); ok {
			return number
		}
	}
	return NotFound
}

// MatchDate returns the first date-shaped substring of line, trying the
// day-first pattern before the year-first one.
func MatchDate(line string) (string, bool) {
	for _, pattern := range datePatterns {
		if match := pattern.FindString(line); match != "" {
			return match, true
		}
	}
	return "", false
}

// FindInvoiceDate returns the first date found scanning lines in order, or NotFound.
// The match is returned as written on the invoice.
func FindInvoiceDate(lines []string) string {
	for _, line := range lines {
		if date, ok := MatchDate(line); ok {
			return date
		}
	}
	return NotFound
}
