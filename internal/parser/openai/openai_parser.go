package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/parser"
	"invoicedesk/internal/port"
)

const (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4.1-mini"
)

// fieldsSchema describes the JSON object the model must reply with.
const fieldsSchema = `{
  "type": "object",
  "properties": {
    "vendorName":   {"type": ["string", "null"]},
    "date":         {"type": ["string", "null"]},
    "employeeName": {"type": ["string", "null"]},
    "gstAmount":    {"type": ["string", "number", "null"]},
    "totalAmount":  {"type": ["string", "number", "null"]},
    "category":     {"type": ["string", "null"]}
  }
}`

var (
	schema = jsonschema.MustCompileString("fields.json", fieldsSchema)

	// dayMonthPattern matches a date missing its year, e.g. "29-07".
	dayMonthPattern = regexp.MustCompile(`^(\d{2})-(\d{2})$`)
)

// Parser implements port.FieldParser using the OpenAI Chat Completions API.
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	now      func() time.Time
}

// NewParser creates an OpenAI-based field parser from a provider config.
func NewParser(cfg *config.ParserProviderConfig) *Parser {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newParser(cfg, endpoint)
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	return newParser(cfg, endpoint)
}

// Factory adapts NewParser to parser.ProviderFactory.
func Factory(cfg *config.ParserProviderConfig) (port.FieldParser, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai parser: api key is required")
	}
	return NewParser(cfg), nil
}

func newParser(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		now:      time.Now,
	}
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	reqBody := map[string]interface{}{
		"model":       p.model,
		"temperature": 0,
		"messages": []map[string]interface{}{
			{"role": "system", "content": parser.BuildFieldPrompt()},
			{"role": "user", "content": parser.BuildUserMessage(input.Text)},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parser.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, parser.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	fields, err := parseResponse(respBody, p.now())
	if err != nil {
		return nil, err
	}
	return &port.ParseOutput{
		Fields:    fields,
		Provider:  "openai",
		ModelUsed: p.model,
	}, nil
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, now time.Time) (domain.ExtractedFields, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ExtractedFields{}, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.ExtractedFields{}, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return domain.ExtractedFields{}, fmt.Errorf("output truncated (finish_reason: length)")
	}

	text := resp.Choices[0].Message.Content
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return domain.ExtractedFields{}, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	if err := schema.Validate(raw); err != nil {
		return domain.ExtractedFields{}, fmt.Errorf("LLM output does not match schema: %w", err)
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return domain.ExtractedFields{}, fmt.Errorf("LLM output is not a JSON object")
	}

	return domain.ExtractedFields{
		Date:         normalizeDate(optional(obj["date"]), now),
		VendorName:   optional(obj["vendorName"]),
		EmployeeName: optional(obj["employeeName"]),
		Category:     optional(obj["category"]),
		GSTAmount:    optional(obj["gstAmount"]),
		TotalAmount:  optional(obj["totalAmount"]),
	}, nil
}

// optional converts a decoded JSON value to an Optional. Null, missing and
// blank values are absent.
func optional(v interface{}) domain.Optional {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return domain.Some(s)
		}
	case json.Number:
		return domain.Some(t.String())
	}
	return domain.None()
}

// normalizeDate completes "DD-MM" with the current year and drops anything
// that is not a valid YYYY-MM-DD date.
func normalizeDate(o domain.Optional, now time.Time) domain.Optional {
	v, ok := o.Get()
	if !ok {
		return o
	}
	if m := dayMonthPattern.FindStringSubmatch(v); m != nil {
		v = fmt.Sprintf("%d-%s-%s", now.Year(), m[2], m[1])
	}
	if _, err := domain.ParseDate(v); err != nil {
		return domain.None()
	}
	return domain.Some(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
