// Package extraction turns the text lines recognized from a scanned invoice
// into an InvoiceRecord.
//
// Everything here is pure: no I/O, no logging, no shared mutable state. The
// rules are plain functions over package-level compiled expressions, so Extract
// may be called from any number of goroutines at once.
package extraction

// Extract builds the record for one image from the recognizer's raw output.
// An empty input yields a record with NotFound metadata and no line items.
func Extract(raw []string) *InvoiceRecord {
	lines := NormalizeLines(raw)

	record := newRecord()
	record.InvoiceNumber = FindInvoiceNumber(lines)
	record.InvoiceDate = FindInvoiceDate(lines)

	for _, block := range SegmentItems(lines) {
		record.LineItems = append(record.LineItems, ParseLineItem(block))
	}

	return record
}
