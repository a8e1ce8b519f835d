package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/validator/invoice"
)

// BOM is the UTF-8 byte order mark, written ahead of CSV exports for Excel
// compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns lists every exportable violation column in output order. Ordinal
// is the 1-based upload position of the invoice the violation belongs to.
var Columns = []string{
	"ordinal",
	"invoice_ref",
	"file_name",
	"rule_id",
	"category",
	"severity",
	"field",
	"message",
}

// CSVWriter writes one row per violation for the documents of a run.
type CSVWriter struct {
	csv  *csv.Writer
	cols []string
}

// NewCSVWriter creates a CSVWriter emitting every column.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w), cols: Columns}
}

// NewCSVWriterColumns creates a CSVWriter restricted to the given column
// subset, in the given order.
func NewCSVWriterColumns(w io.Writer, cols []string) (*CSVWriter, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns selected")
	}
	known := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		known[c] = true
	}
	for _, c := range cols {
		if !known[c] {
			return nil, fmt.Errorf("unknown export column: %s", c)
		}
	}
	return &CSVWriter{csv: csv.NewWriter(w), cols: cols}, nil
}

// WriteHeader writes the column header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(w.cols)
}

// WriteDocuments writes the violations of each document as CSV rows. A
// document without violations contributes no rows.
func (w *CSVWriter) WriteDocuments(docs []domain.RunDocument) error {
	for i := range docs {
		for _, row := range documentRows(&docs[i]) {
			if err := w.csv.Write(w.project(row)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

func (w *CSVWriter) project(row map[string]string) []string {
	out := make([]string, len(w.cols))
	for i, c := range w.cols {
		out[i] = row[c]
	}
	return out
}

// documentRows expands a document's stored violations into column-keyed
// rows. Undecodable violation JSON yields no rows.
func documentRows(doc *domain.RunDocument) []map[string]string {
	if len(doc.Violations) == 0 {
		return nil
	}
	var violations []invoice.Violation
	if err := json.Unmarshal(doc.Violations, &violations); err != nil {
		return nil
	}

	rows := make([]map[string]string, 0, len(violations))
	for _, v := range violations {
		field := ""
		if v.Field != nil {
			field = *v.Field
		}
		rows = append(rows, map[string]string{
			"ordinal":     strconv.Itoa(doc.Position + 1),
			"invoice_ref": doc.InvoiceRef,
			"file_name":   doc.FileName,
			"rule_id":     v.RuleID,
			"category":    string(v.Category),
			"severity":    string(v.Severity),
			"field":       field,
			"message":     v.Message,
		})
	}
	return rows
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized attachment filename,
// {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), time.Now().Format("2006-01-02"), ext)
}
