package parser

import "strings"

// RemoteCategories are the labels remote parsers may choose from.
var RemoteCategories = []string{"Food", "Travel", "Utilities", "Office Supplies", "Entertainment", "Healthcare", "Other"}

// BuildFieldPrompt returns the system prompt for remote invoice field extraction.
func BuildFieldPrompt() string {
	return `You are an invoice parser. Always return valid JSON with this schema:
{
  "vendorName": "string",
  "date": "YYYY-MM-DD",
  "employeeName": "string",
  "gstAmount": "number",
  "totalAmount": "number",
  "category": "` + strings.Join(RemoteCategories, " | ") + `"
}
Use an empty string for any field that does not appear in the text.`
}

// BuildUserMessage wraps recognized invoice text for a remote parser.
func BuildUserMessage(text string) string {
	return "Extract the fields from this invoice text:\n\n" + text
}
