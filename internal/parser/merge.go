package parser

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"invoiceqc/internal/port"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// MergeParser wraps two DocumentParsers, runs both in parallel, and merges
// results field by field. The primary value wins on conflict; gaps in the
// primary result are filled from the secondary. Typically the primary is an
// LLM provider and the secondary the deterministic pattern extractor.
type MergeParser struct {
	primary   port.DocumentParser
	secondary port.DocumentParser
}

// NewMergeParser creates a MergeParser from primary and secondary parsers.
func NewMergeParser(primary, secondary port.DocumentParser) *MergeParser {
	return &MergeParser{primary: primary, secondary: secondary}
}

func (m *MergeParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	type result struct {
		output *port.ParseOutput
		err    error
	}

	var wg sync.WaitGroup
	primaryCh := make(chan result, 1)
	secondaryCh := make(chan result, 1)

	wg.Add(2)
	go func() {
		defer wg.Done()
		out, err := m.primary.Parse(ctx, input)
		primaryCh <- result{out, err}
	}()
	go func() {
		defer wg.Done()
		out, err := m.secondary.Parse(ctx, input)
		secondaryCh <- result{out, err}
	}()

	wg.Wait()
	close(primaryCh)
	close(secondaryCh)

	pResult := <-primaryCh
	sResult := <-secondaryCh

	// Both failed
	if pResult.err != nil && sResult.err != nil {
		return nil, fmt.Errorf("both parsers failed: primary: %v; secondary: %v", pResult.err, sResult.err)
	}

	// Only secondary succeeded
	if pResult.err != nil {
		log.Printf("parser.MergeParser: primary parser failed (%v), using secondary only", pResult.err)
		return sResult.output, nil
	}

	// Only primary succeeded
	if sResult.err != nil {
		log.Printf("parser.MergeParser: secondary parser failed (%v), using primary only", sResult.err)
		return pResult.output, nil
	}

	// Both succeeded, merge
	return mergeOutputs(pResult.output, sResult.output), nil
}

func mergeOutputs(primary, secondary *port.ParseOutput) *port.ParseOutput {
	merged := primary.Invoice
	sec := secondary.Invoice

	conf := make(map[string]float64, len(primary.Confidence))
	for k, v := range primary.Confidence {
		conf[k] = v
	}
	sConf := secondary.Confidence
	if sConf == nil {
		sConf = map[string]float64{}
	}

	stringFields := []struct {
		name string
		p    *string
		s    string
		re   *regexp.Regexp
	}{
		{"invoice_number", &merged.InvoiceNumber, sec.InvoiceNumber, nil},
		{"customer_number", &merged.CustomerNumber, sec.CustomerNumber, nil},
		{"order_reference", &merged.OrderReference, sec.OrderReference, nil},
		{"buyer_name", &merged.BuyerName, sec.BuyerName, nil},
		{"buyer_address", &merged.BuyerAddress, sec.BuyerAddress, nil},
		{"seller_name", &merged.SellerName, sec.SellerName, nil},
		{"seller_address", &merged.SellerAddress, sec.SellerAddress, nil},
		{"invoice_date", &merged.InvoiceDate, sec.InvoiceDate, isoDateRe},
		{"due_date", &merged.DueDate, sec.DueDate, isoDateRe},
		{"delivery_date", &merged.DeliveryDate, sec.DeliveryDate, isoDateRe},
		{"currency", &merged.Currency, sec.Currency, currencyRe},
		{"payment_terms", &merged.PaymentTerms, sec.PaymentTerms, nil},
	}
	for _, f := range stringFields {
		mergeString(f.name, f.p, f.s, conf, sConf, f.re)
	}

	decimalFields := []struct {
		name string
		p    **decimal.Decimal
		s    *decimal.Decimal
	}{
		{"net_total", &merged.NetTotal, sec.NetTotal},
		{"tax_rate", &merged.TaxRate, sec.TaxRate},
		{"tax_amount", &merged.TaxAmount, sec.TaxAmount},
		{"gross_total", &merged.GrossTotal, sec.GrossTotal},
	}
	for _, f := range decimalFields {
		mergeDecimal(f.name, f.p, f.s, conf, sConf)
	}

	// Line items: the array with more items wins. Providers sometimes
	// truncate long tables; the pattern extractor never does.
	if len(sec.LineItems) > len(merged.LineItems) {
		merged.LineItems = sec.LineItems
		conf["line_items"] = sConf["line_items"]
	}

	return &port.ParseOutput{
		Invoice:    merged,
		Confidence: conf,
		Provider:   primary.Provider + "+" + secondary.Provider,
	}
}

// mergeString implements the merge strategy for scalar string fields.
// A format regexp, when given, settles disagreements in favor of the
// well-formed value.
func mergeString(field string, p *string, s string, conf, sConf map[string]float64, formatRe *regexp.Regexp) {
	pv := strings.TrimSpace(*p)
	sv := strings.TrimSpace(s)

	switch {
	case pv == sv:
		// Agreement: boost confidence
		if pv != "" {
			conf[field] = boost(conf[field])
		}
	case pv == "" && sv != "":
		*p = sv
		conf[field] = sConf[field]
	case sv == "":
		// keep primary
	case formatRe != nil && formatRe.MatchString(sv) && !formatRe.MatchString(pv):
		*p = sv
		conf[field] = sConf[field] * 0.8
	case formatRe != nil && formatRe.MatchString(pv) && !formatRe.MatchString(sv):
		conf[field] = conf[field] * 0.8
	default:
		// Disagreement: keep primary, reduce confidence
		conf[field] = conf[field] * 0.6
	}
}

// mergeDecimal implements the merge strategy for nullable amount fields.
func mergeDecimal(field string, p **decimal.Decimal, s *decimal.Decimal, conf, sConf map[string]float64) {
	switch {
	case *p == nil && s != nil:
		*p = s
		conf[field] = sConf[field]
	case *p == nil || s == nil:
		// nothing to reconcile
	case (*p).Equal(*s):
		conf[field] = boost(conf[field])
	default:
		conf[field] = conf[field] * 0.6
	}
}

func boost(c float64) float64 {
	b := c + (1.0-c)*0.2
	if b > 1.0 {
		b = 1.0
	}
	return b
}
