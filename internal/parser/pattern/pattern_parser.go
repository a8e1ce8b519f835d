package pattern

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"invoiceqc/internal/config"
	"invoiceqc/internal/parser"
	"invoiceqc/internal/port"
	"invoiceqc/internal/validator/invoice"
)

const providerName = "pattern"

func init() {
	parser.RegisterProvider(providerName, func(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
		return NewParser(cfg), nil
	})
}

// Field patterns for German purchase-order style invoices.
var (
	invoiceNumberRe  = regexp.MustCompile(`(?i)(?:Bestellung|AUFNR)\s*(\w+)`)
	orderReferenceRe = regexp.MustCompile(`(?i)im Auftrag von\s*(\d+)`)
	customerNumberRe = regexp.MustCompile(`(?i)Unsere Kundennummer\s+(\d+)`)
	invoiceDateRe    = regexp.MustCompile(`(?i)vom\s*(\d{2}\.\d{2}\.\d{4})`)
	taxRateRe        = regexp.MustCompile(`(?i)MwSt\.\s*(\d+[,.]?\d*)%`)
	netTotalRe       = regexp.MustCompile(`(?i)Gesamtwert\s+EUR\s+(\d+(?:\.\d{3})*(?:,\d+)?)`)
	taxAmountRe      = regexp.MustCompile(`(?i)MwSt\.\s+\d+[,.]?\d*%\s+EUR\s+(\d+(?:\.\d{3})*(?:,\d+)?)`)
	grossTotalRe     = regexp.MustCompile(`(?i)Gesamtwert inkl\. MwSt\.\s+EUR\s+(\d+(?:\.\d{3})*(?:,\d+)?)`)
	paymentTermsRe   = regexp.MustCompile(`(?i)Zahlungsbedingungen\s+([^\n]+)`)
	deliveryDateRe   = regexp.MustCompile(`(?i)Gewünschtes Lieferdatum\s+([^\n]+)`)
)

// Party block patterns.
var (
	buyerNameRe     = regexp.MustCompile(`Kundenanschrift\s+([^\n]+)`)
	buyerNameAltRe  = regexp.MustCompile(`([\w\s]+(?:GmbH|AG|Unternehmen|Corporation))`)
	buyerAddrRe     = regexp.MustCompile(`([A-ZÄÖÜa-zäöüß\-.]+str\.?\s+\d+[^,]*,\s*[^,]+,\s*\w+\s+\d{5}[^\n]*)`)
	buyerAddrAltRe  = regexp.MustCompile(`(?i)([\w\-.]+str\.?\s+\d+[^\n]+Deutschland)`)
	sellerNameRe    = regexp.MustCompile(`([A-Z]{3,}\s+Corporation)`)
	sellerNameAltRe = regexp.MustCompile(`Ihre Faxnummer:[^\n]+\n([^\n]+)`)
	sellerAddrRe    = regexp.MustCompile(`([A-ZÄÖÜa-zäöüß\s]+\d+[^\n]{10,80})`)
)

// Line item patterns. Rows look like "1 4 VE  1 VE=20 Stück  64,00 16,0000 pro 1 VE".
var (
	itemRowVERe   = regexp.MustCompile(`^\d+\s+\d+\s+VE`)
	itemRowAltRe  = regexp.MustCompile(`^\d+\s+[A-Z]`)
	itemQtyRe     = regexp.MustCompile(`(\d+)\s+VE`)
	itemPriceRe   = regexp.MustCompile(`(\d+[,.]?\d*)\s+pro\s+1\s+VE`)
	itemArticleRe = regexp.MustCompile(`Lief\.Art\.Nr:\s*(\S+)`)
	itemSkipRe    = regexp.MustCompile(`Lief\.Art\.Nr|Interne Mat\.Nr|Kostenstelle`)
	itemDescRe    = regexp.MustCompile(`^([A-ZÄÖÜa-zäöüß\s\-\[\]/]+)$`)
	amountRe      = regexp.MustCompile(`\d+[,.]?\d*`)
	digitsOnlyRe  = regexp.MustCompile(`^\d+$`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
)

// Parser implements port.DocumentParser with deterministic regex extraction
// for German text invoices. It needs no network and no credentials, which
// makes it the offline path for the CLI and a stable baseline to merge LLM
// output against.
type Parser struct{}

// NewParser creates a pattern-based invoice extractor. The provider config is
// accepted for factory symmetry but carries no settings.
func NewParser(_ *config.ParserProviderConfig) *Parser {
	return &Parser{}
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	if input.ContentType != "text/plain" {
		return nil, fmt.Errorf("pattern extractor supports text/plain only, got %s", input.ContentType)
	}

	inv, conf := extract(string(input.FileBytes))
	return &port.ParseOutput{
		Invoice:    inv,
		Confidence: conf,
		Provider:   providerName,
	}, nil
}

// extract pulls structured fields out of raw invoice text. Extraction is
// best effort: fields without a match stay absent and the validation rules
// report them downstream.
func extract(text string) (invoice.Invoice, map[string]float64) {
	var inv invoice.Invoice
	conf := map[string]float64{}

	setStr := func(field string, dst *string, v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		*dst = v
		conf[field] = 1.0
	}
	setDec := func(field string, dst **decimal.Decimal, raw string) {
		if d := parseGermanNumber(raw); d != nil {
			*dst = d
			conf[field] = 1.0
		}
	}

	if m := invoiceNumberRe.FindStringSubmatch(text); m != nil {
		setStr("invoice_number", &inv.InvoiceNumber, m[1])
	}
	if m := orderReferenceRe.FindStringSubmatch(text); m != nil {
		setStr("order_reference", &inv.OrderReference, m[1])
	}
	if m := customerNumberRe.FindStringSubmatch(text); m != nil {
		setStr("customer_number", &inv.CustomerNumber, m[1])
	}
	if m := invoiceDateRe.FindStringSubmatch(text); m != nil {
		iso := germanToISODate(m[1])
		setStr("invoice_date", &inv.InvoiceDate, iso)
		// The sample corpus carries no separate due date; orders are
		// payable on issue.
		setStr("due_date", &inv.DueDate, iso)
	}
	if m := deliveryDateRe.FindStringSubmatch(text); m != nil {
		setStr("delivery_date", &inv.DeliveryDate, germanToISODate(m[1]))
	}
	if m := paymentTermsRe.FindStringSubmatch(text); m != nil {
		setStr("payment_terms", &inv.PaymentTerms, m[1])
	}

	if m := taxRateRe.FindStringSubmatch(text); m != nil {
		setDec("tax_rate", &inv.TaxRate, m[1])
	}
	if m := netTotalRe.FindStringSubmatch(text); m != nil {
		setDec("net_total", &inv.NetTotal, m[1])
	}
	if m := taxAmountRe.FindStringSubmatch(text); m != nil {
		setDec("tax_amount", &inv.TaxAmount, m[1])
	}
	if m := grossTotalRe.FindStringSubmatch(text); m != nil {
		setDec("gross_total", &inv.GrossTotal, m[1])
	}

	setStr("buyer_name", &inv.BuyerName, extractBuyerName(text))
	setStr("buyer_address", &inv.BuyerAddress, extractBuyerAddress(text))
	setStr("seller_name", &inv.SellerName, extractSellerName(text))
	setStr("seller_address", &inv.SellerAddress, extractSellerAddress(text))

	// All invoices in the supported corpus are EUR.
	setStr("currency", &inv.Currency, "EUR")

	inv.LineItems = extractLineItems(text)
	if len(inv.LineItems) > 0 {
		conf["line_items"] = 1.0
	}

	return inv, conf
}

func extractBuyerName(text string) string {
	if m := buyerNameRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := buyerNameAltRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func extractBuyerAddress(text string) string {
	if m := buyerAddrRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := buyerAddrAltRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func extractSellerName(text string) string {
	if m := sellerNameRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := sellerNameAltRe.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if len(candidate) > 5 && !digitsOnlyRe.MatchString(candidate) {
			return candidate
		}
	}
	return ""
}

func extractSellerAddress(text string) string {
	name := extractSellerName(text)
	if name == "" {
		return ""
	}
	idx := strings.Index(text, name)
	if idx == -1 {
		return ""
	}
	start := idx + len(name)
	end := start + 200
	if end > len(text) {
		end = len(text)
	}
	if m := sellerAddrRe.FindStringSubmatch(text[start:end]); m != nil {
		return spaceRunRe.ReplaceAllString(strings.TrimSpace(m[1]), " ")
	}
	return ""
}

func extractLineItems(text string) []invoice.LineItem {
	var items []invoice.LineItem
	lines := strings.Split(text, "\n")

	position := 1
	for i := range lines {
		line := strings.TrimSpace(lines[i])
		if !itemRowVERe.MatchString(line) && !itemRowAltRe.MatchString(line) {
			continue
		}
		end := i + 10
		if end > len(lines) {
			end = len(lines)
		}
		if item, ok := parseLineItem(line, lines[i:end], position); ok {
			items = append(items, item)
			position++
		}
	}

	return items
}

func parseLineItem(line string, context []string, position int) (invoice.LineItem, bool) {
	qm := itemQtyRe.FindStringSubmatch(line)
	if qm == nil {
		return invoice.LineItem{}, false
	}
	quantity := parseGermanNumber(qm[1])

	item := invoice.LineItem{
		Position:    position,
		Description: "Unknown item",
		Quantity:    quantity,
		Unit:        "VE",
	}

	if desc := descriptionFromContext(context); desc != "" {
		item.Description = desc
	}

	head := context
	if len(head) > 5 {
		head = head[:5]
	}
	if am := itemArticleRe.FindStringSubmatch(strings.Join(head, "\n")); am != nil {
		item.ArticleNumber = am[1]
	}

	if pm := itemPriceRe.FindStringSubmatch(line); pm != nil {
		item.UnitPrice = parseGermanNumber(pm[1])
	}

	item.LineTotal = findLineTotal(line, quantity, item.UnitPrice)
	if item.LineTotal == nil && quantity != nil && item.UnitPrice != nil && item.UnitPrice.IsPositive() {
		total := quantity.Mul(*item.UnitPrice)
		item.LineTotal = &total
	}

	return item, true
}

// findLineTotal scans the row's numbers right to left and picks the first
// one at or above 90% of quantity times unit price. Rows print the total
// near the end, after intermediate unit counts.
func findLineTotal(line string, quantity, unitPrice *decimal.Decimal) *decimal.Decimal {
	amounts := amountRe.FindAllString(line, -1)
	if len(amounts) < 2 {
		return nil
	}

	threshold := decimal.Zero
	if quantity != nil && unitPrice != nil {
		threshold = quantity.Mul(*unitPrice).Mul(decimal.NewFromFloat(0.9))
	}

	for i := len(amounts) - 1; i >= 0; i-- {
		if d := parseGermanNumber(amounts[i]); d != nil && d.GreaterThanOrEqual(threshold) {
			return d
		}
	}
	return nil
}

func descriptionFromContext(lines []string) string {
	n := len(lines)
	if n > 8 {
		n = 8
	}
	for _, l := range lines[:n] {
		if itemSkipRe.MatchString(l) {
			continue
		}
		m := itemDescRe.FindStringSubmatch(strings.TrimSpace(l))
		if m == nil {
			continue
		}
		desc := strings.TrimSpace(m[1])
		if len(desc) <= 3 || digitsOnlyRe.MatchString(desc) || strings.Contains(desc, "Bestellung") {
			continue
		}
		return desc
	}
	return ""
}

// parseGermanNumber converts German number format (1.234,56) to a decimal.
// Returns nil when the value does not parse.
func parseGermanNumber(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// germanToISODate converts DD.MM.YYYY to YYYY-MM-DD. Values in any other
// shape pass through unchanged so the format rules can report them.
func germanToISODate(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return s
	}
	day, month, year := parts[0], parts[1], parts[2]
	if !digitsOnlyRe.MatchString(day) || !digitsOnlyRe.MatchString(month) || !digitsOnlyRe.MatchString(year) {
		return s
	}
	return fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day))
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
