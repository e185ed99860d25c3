package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/invoice-scanner/internal/extraction"
)

// Invoice is a scanned invoice image together with the record extracted from it
type Invoice struct {
	ID          string                   `json:"id"`
	Record      extraction.InvoiceRecord `json:"record"`
	NetTotal    decimal.Decimal          `json:"net_total"`   // Sum of line item net worth
	GrossTotal  decimal.Decimal          `json:"gross_total"` // Sum of line item gross worth
	Filename    string                   `json:"filename"`
	ContentType string                   `json:"content_type"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}
