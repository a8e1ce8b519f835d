package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Invoice is the strongly-typed representation of an extracted invoice.
// Every field is optional at the wire level: absent strings decode to "",
// absent amounts decode to nil. Zero is a present value, distinct from nil.
type Invoice struct {
	// Identifiers
	InvoiceNumber  string `json:"invoice_number"`
	CustomerNumber string `json:"customer_number,omitempty"`
	OrderReference string `json:"order_reference,omitempty"`

	// Parties
	BuyerName     string `json:"buyer_name"`
	BuyerAddress  string `json:"buyer_address,omitempty"`
	SellerName    string `json:"seller_name"`
	SellerAddress string `json:"seller_address,omitempty"`

	// Dates, ISO-8601 (YYYY-MM-DD). Kept as strings so that malformed
	// values survive decoding and can be reported by the format rules.
	InvoiceDate  string `json:"invoice_date"`
	DueDate      string `json:"due_date"`
	DeliveryDate string `json:"delivery_date,omitempty"`

	// Financial
	Currency   string           `json:"currency"`
	NetTotal   *decimal.Decimal `json:"net_total"`
	TaxRate    *decimal.Decimal `json:"tax_rate"`
	TaxAmount  *decimal.Decimal `json:"tax_amount"`
	GrossTotal *decimal.Decimal `json:"gross_total"`

	PaymentTerms string `json:"payment_terms,omitempty"`

	LineItems []LineItem `json:"line_items"`

	// SourceFile is the name of the document the invoice was extracted
	// from, when known. Never inspected by validation rules.
	SourceFile string `json:"source_file,omitempty"`
}

// LineItem is a single position on the invoice.
type LineItem struct {
	Position      int              `json:"position"`
	Description   string           `json:"description"`
	ArticleNumber string           `json:"article_number,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity"`
	Unit          string           `json:"unit,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	LineTotal     *decimal.Decimal `json:"line_total"`
}

// missing reports whether a string field counts as absent: empty or
// whitespace-only.
func missing(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Dec builds a *decimal.Decimal from a string literal. It panics on bad
// input and is meant for fixtures and extraction code with trusted values.
func Dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// DecFloat builds a *decimal.Decimal from a float64.
func DecFloat(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
