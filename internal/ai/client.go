// Package ai wraps the Gemini API for the advisory modules. Everything here
// is best-effort: callers treat a nil client or any error as Degraded mode
// and carry on without annotations.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for all advisory calls
const DefaultModelName = "gemini-flash-latest"

// Categorizer suggests a category for a transaction title
type Categorizer interface {
	SuggestCategory(ctx context.Context, title string, categories []string) (string, error)
}

// InsightWriter generates a narrative monthly report
type InsightWriter interface {
	MonthlyInsight(ctx context.Context, data InsightData) (string, error)
}

// StatementParser extracts transactions from bank-statement PDF bytes
type StatementParser interface {
	ParseStatement(ctx context.Context, pdfBytes []byte) ([]*ParsedTransaction, error)
}

// ReceiptAnalyzer extracts structured data from a receipt image or PDF
type ReceiptAnalyzer interface {
	AnalyzeReceipt(ctx context.Context, data []byte, mimeType string) (*ReceiptData, error)
}

// InsightData is the ledger snapshot an insight report is written from
type InsightData struct {
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	TotalSavings   decimal.Decimal
	CategoryTotals map[string]decimal.Decimal
}

// ParsedTransaction is one statement row as returned by the model
type ParsedTransaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
}

// ReceiptData is the structured extraction of a single receipt
type ReceiptData struct {
	Merchant        string          `json:"merchant"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	Date            string          `json:"date"`
	Category        string          `json:"category"`
	ConfidenceScore float64         `json:"confidence_score"`
}

// Client implements all advisory interfaces against the Gemini API
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed client. An empty API key is a
// configuration decision, not an error: the caller gets (nil, nil) and runs
// with advisory features disabled.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: c, model: DefaultModelName}, nil
}

// SuggestCategory asks the model to pick one of the given categories for the
// title. The caller validates the answer against the taxonomy.
func (c *Client) SuggestCategory(ctx context.Context, title string, categories []string) (string, error) {
	prompt := fmt.Sprintf("Categorize this transaction: '%s'. Valid categories: %s. Return ONLY the category name.",
		title, strings.Join(categories, ", "))

	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// MonthlyInsight writes a human-readable spending report from summary data
func (c *Client) MonthlyInsight(ctx context.Context, data InsightData) (string, error) {
	snapshot, err := json.Marshal(data.CategoryTotals)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Act as a Professional Fintech AI Coach.
Analyze this monthly spending data for a user:
Total Income: %s
Total Spent: %s
Net Savings: %s
Category Breakdown: %s

Return a human-readable report with:
1. Behavior Analysis
2. Savings Advice
3. Potential Warnings
4. Positive Reinforcement
Use bullet points and emojis. Keep it professional yet encouraging.`,
		data.TotalIncome.StringFixed(2), data.TotalExpenses.StringFixed(2),
		data.TotalSavings.StringFixed(2), string(snapshot))

	return c.generateText(ctx, prompt)
}

const statementPrompt = `You are a financial data extraction AI. Analyze the following bank statement text and extract all transactions.

Rules:
1. Return ONLY raw JSON array. No markdown formatting.
2. Structure: [{"date": "YYYY-MM-DD", "description": "Merchant/Details", "amount": 10.50, "category": "CategoryName", "type": "Paid" or "Received"}]
3. "Paid" = Debits/Withdrawals, "Received" = Credits/Deposits.
4. Ignore non-transaction lines (headers, balances).
5. Guess the category (Food, Travel, Bills, Shopping, Salary, Investment, Others).
`

// ParseStatement sends statement PDF bytes to the model and decodes the
// strict-JSON transaction array it returns.
func (c *Client) ParseStatement(ctx context.Context, pdfBytes []byte) ([]*ParsedTransaction, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: statementPrompt},
				{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: pdfBytes}},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("parse statement: empty response from model")
	}

	var rows []*ParsedTransaction
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &rows); err != nil {
		return nil, fmt.Errorf("parse statement: unmarshal JSON: %w", err)
	}
	return rows, nil
}

const receiptPrompt = `You are a receipt analysis engine.
Extract structured financial data from this receipt.
Return ONLY valid JSON.

{
  "merchant": "string",
  "total_amount": number,
  "currency": "string",
  "date": "YYYY-MM-DD",
  "category": "Food/Travel/Shopping/Bills/Health/others",
  "confidence_score": number
}
No extra text allowed.`

// AnalyzeReceipt extracts merchant/total/date/category from a receipt image
func (c *Client) AnalyzeReceipt(ctx context.Context, data []byte, mimeType string) (*ReceiptData, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze receipt: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("analyze receipt: empty response from model")
	}

	var receipt ReceiptData
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &receipt); err != nil {
		return nil, fmt.Errorf("analyze receipt: unmarshal JSON: %w", err)
	}
	return &receipt, nil
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// cleanModelJSON strips Markdown code fences the model sometimes emits
// despite instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
