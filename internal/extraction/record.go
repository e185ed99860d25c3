package extraction

const (
	// NotFound is used for metadata fields that could not be located
	NotFound = "Not Found"

	// DefaultUnit is used when a quantity was found without an explicit unit
	DefaultUnit = "each"
)

// InvoiceRecord is the structured result extracted from one invoice image
type InvoiceRecord struct {
	InvoiceNumber string     `json:"Invoice Number"`
	InvoiceDate   string     `json:"Invoice Date"`
	LineItems     []LineItem `json:"Line Items"`
}

// LineItem is a single parsed item block. Absent numbers are nil and
// serialize as null.
type LineItem struct {
	Description string   `json:"Description"`
	Qty         *float64 `json:"Qty"`
	Unit        string   `json:"Unit"`
	NetPrice    *float64 `json:"Net price"`
	NetWorth    *float64 `json:"Net worth"`
	VAT         *float64 `json:"VAT"`
	GrossWorth  *float64 `json:"Gross worth"`
}

// newRecord returns a record with both metadata fields set to NotFound
func newRecord() *InvoiceRecord {
	return &InvoiceRecord{
		InvoiceNumber: NotFound,
		InvoiceDate:   NotFound,
		LineItems:     []LineItem{},
	}
}
