package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"invoiceqc/internal/config"
	"invoiceqc/internal/parser/pattern"
	"invoiceqc/internal/port"
	"invoiceqc/internal/validator"
	"invoiceqc/internal/validator/invoice"
)

const usage = `Usage: qc <command> [arguments]

Commands:
  extract  <file...>                  extract invoices from text documents, JSON to stdout
  validate [--summary] <batch.json>   validate a JSON invoice batch file
  full-run [--summary] <file...>      extract then validate in one step

validate and full-run print the full report as JSON, or a console breakdown
with --summary, and exit 1 when any invoice is invalid.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "full-run":
		runFullRun(os.Args[2:])
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func runExtract(args []string) {
	files, _ := splitFlags(args)
	if len(files) == 0 {
		log.Fatal("extract: at least one file is required")
	}

	batch := extractFiles(files)
	out, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		log.Fatalf("encoding invoices: %v", err)
	}
	fmt.Println(string(out))
}

func runValidate(args []string) {
	files, summary := splitFlags(args)
	if len(files) != 1 {
		log.Fatal("validate: exactly one batch file is required")
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		log.Fatalf("reading %s: %v", files[0], err)
	}
	var batch []json.RawMessage
	if err := json.Unmarshal(data, &batch); err != nil {
		log.Fatalf("parsing %s: batch must be a JSON array: %v", files[0], err)
	}

	report := newEngine().RunRaw(batch)
	printReport(report, summary)
	if report.Summary.InvalidCount > 0 {
		os.Exit(1)
	}
}

func runFullRun(args []string) {
	files, summary := splitFlags(args)
	if len(files) == 0 {
		log.Fatal("full-run: at least one file is required")
	}

	batch := extractFiles(files)
	report := newEngine().Run(batch)
	printReport(report, summary)
	if report.Summary.InvalidCount > 0 {
		os.Exit(1)
	}
}

// newEngine builds the rule engine from environment configuration so the
// CLI applies the same tolerances as the server. All settings default, so
// no environment is required.
func newEngine() *validator.Engine {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return validator.NewDefaultEngine(invoice.Config{
		KnownCurrencies: cfg.Validation.KnownCurrencies,
		SumTolerance:    cfg.Validation.SumTolerance,
		TaxTolerance:    cfg.Validation.TaxTolerance,
	})
}

// extractFiles runs the offline pattern extractor over each file in order.
func extractFiles(paths []string) []invoice.Invoice {
	p := pattern.NewParser(nil)
	out := make([]invoice.Invoice, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("reading %s: %v", path, err)
		}

		contentType := http.DetectContentType(data)
		if i := strings.IndexByte(contentType, ';'); i >= 0 {
			contentType = strings.TrimSpace(contentType[:i])
		}

		res, err := p.Parse(context.Background(), port.ParseInput{
			FileBytes:   data,
			ContentType: contentType,
			FileName:    filepath.Base(path),
		})
		if err != nil {
			log.Fatalf("extracting %s: %v", path, err)
		}

		inv := res.Invoice
		inv.SourceFile = filepath.Base(path)
		out = append(out, inv)
	}
	return out
}

// splitFlags separates the --summary flag from file arguments.
func splitFlags(args []string) (files []string, summary bool) {
	for _, a := range args {
		if a == "--summary" {
			summary = true
			continue
		}
		files = append(files, a)
	}
	return files, summary
}

func printReport(report validator.Report, summary bool) {
	if summary {
		printSummary(report)
		return
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("encoding report: %v", err)
	}
	fmt.Println(string(out))
}

func printSummary(report validator.Report) {
	s := report.Summary
	fmt.Printf("Invoices: %d  Valid: %d  Invalid: %d\n", s.TotalInvoices, s.ValidCount, s.InvalidCount)

	top := s.TopErrors(10)
	if len(top) == 0 {
		return
	}
	fmt.Println("\nMost frequent failures:")
	for _, e := range top {
		fmt.Printf("  %-35s %d\n", e.RuleID, e.Count)
	}
}
