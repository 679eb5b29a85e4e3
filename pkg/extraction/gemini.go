package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/davidchanit/receipt-scanner-backend/domain"
	"github.com/davidchanit/receipt-scanner-backend/pkg/extraction/parser"
)

const geminiPrompt = "Analyze this receipt image and respond ONLY with a valid JSON object " +
	"containing exactly these fields: 'date' (string), 'currency' (3-letter code string), " +
	"'vendorName' (string), 'items' (array of objects with 'name' string and 'cost' number), " +
	"'tax' (number) and 'total' (number). Do not include any explanations, markdown formatting, " +
	"or extra text."

var (
	ErrEmptyGeminiResponse = errors.New("no content in gemini response")

	jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)
)

type geminiExtractor struct {
	model *genai.GenerativeModel
}

// NewGeminiExtractor builds the structured-vision backend. The client is
// constructed once at process start and reused for every request.
func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (Extractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	return &geminiExtractor{model: model}, nil
}

func (e *geminiExtractor) Name() string {
	return BackendStructuredVision
}

func (e *geminiExtractor) Extract(ctx context.Context, image []byte, contentType string) (domain.ParsedReceipt, error) {
	parts := []genai.Part{
		genai.ImageData(imageFormat(contentType), image),
		genai.Text(geminiPrompt),
	}

	resp, err := e.model.GenerateContent(ctx, parts...)
	if err != nil {
		return domain.ParsedReceipt{}, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return domain.ParsedReceipt{}, ErrEmptyGeminiResponse
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return coerceReceiptJSON(stripMarkdownFences(responseText.String()))
}

// imageFormat maps a MIME type to the bare format suffix genai expects.
func imageFormat(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png"
	default:
		return "jpeg"
	}
}

func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if match := jsonObjectRegex.FindString(text); match != "" {
		text = match
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// coerceReceiptJSON decodes the model's untyped JSON and defaults every
// field that is missing or of the wrong type, so a syntactically valid
// response always yields a usable receipt.
func coerceReceiptJSON(text string) (domain.ParsedReceipt, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return domain.ParsedReceipt{}, fmt.Errorf("unparsable gemini response: %w", err)
	}

	receipt := domain.ParsedReceipt{
		Date:       stringField(raw, "date", time.Now().Format("2006-01-02")),
		Currency:   stringField(raw, "currency", "USD"),
		VendorName: stringField(raw, "vendorName", parser.UnknownVendor),
		Items:      coerceItems(raw["items"]),
		Tax:        numberField(raw, "tax"),
		Total:      numberField(raw, "total"),
	}

	if receipt.Total == 0 && len(receipt.Items) > 0 {
		var subtotal float64
		for _, item := range receipt.Items {
			subtotal += item.Cost
		}
		receipt.Total = subtotal + receipt.Tax
	}

	return receipt, nil
}

func coerceItems(value interface{}) []domain.ParsedItem {
	rawItems, ok := value.([]interface{})
	if !ok || len(rawItems) == 0 {
		return []domain.ParsedItem{{Name: parser.SentinelItem, Cost: 0}}
	}

	items := make([]domain.ParsedItem, 0, len(rawItems))
	for _, rawItem := range rawItems {
		fields, ok := rawItem.(map[string]interface{})
		if !ok {
			items = append(items, domain.ParsedItem{Name: "Unknown Item", Cost: 0})
			continue
		}
		items = append(items, domain.ParsedItem{
			Name: stringField(fields, "name", "Unknown Item"),
			Cost: numberField(fields, "cost"),
		})
	}
	return items
}

func stringField(fields map[string]interface{}, key, fallback string) string {
	if v, ok := fields[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func numberField(fields map[string]interface{}, key string) float64 {
	if v, ok := fields[key].(float64); ok {
		return v
	}
	return 0
}
