package parser

// BuildInvoicePrompt returns the extraction prompt for invoice documents.
func BuildInvoicePrompt(documentType string) string {
	return `You are a document data extraction assistant. Analyze the provided ` + documentType + ` invoice and extract ALL data into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- The document may span multiple pages. Extract EVERY line item from every page into a single flat "line_items" array. Do not skip, summarize, or omit any items.
- Normalize all dates to ISO format YYYY-MM-DD. Strip timestamps and other non-date text. German dates like "22.05.2024" become "2024-05-22".
- Normalize all amounts to plain JSON numbers with a dot decimal separator. German amounts like "1.234,56" become 1234.56.
- Currency must be the three-letter ISO 4217 code in upper case (e.g. "EUR").
- Keep the seller and buyer distinct: the seller issues the invoice, the buyer receives it.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object.

Return two top-level keys: "data" and "confidence_scores".

The "data" object must follow this schema:
{
  "invoice_number": "",
  "customer_number": "",
  "order_reference": "",
  "buyer_name": "",
  "buyer_address": "",
  "seller_name": "",
  "seller_address": "",
  "invoice_date": "",
  "due_date": "",
  "delivery_date": "",
  "currency": "",
  "net_total": null,
  "tax_rate": null,
  "tax_amount": null,
  "gross_total": null,
  "payment_terms": "",
  "line_items": [
    {
      "position": 0,
      "description": "",
      "article_number": "",
      "quantity": null,
      "unit": "",
      "unit_price": null,
      "line_total": null
    }
  ]
}

The "confidence_scores" object maps each field name above to a float between 0.0 and 1.0 indicating your confidence in the extracted value. Use a single "line_items" key for the whole array. Use 0.0 for fields not found in the document.

If a field is not present in the document, use empty string for text and null for numbers. Never invent values.`
}
