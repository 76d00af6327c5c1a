package sift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sift-api/internal/domain"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Summarizer turns normalized content into a title, category, tags and a
// markdown summary
type Summarizer interface {
	Summarize(ctx context.Context, content domain.NormalizedContent) (domain.AISummary, error)
}

// MaxSummaryInput caps the serialized content sent to the model, in characters
const MaxSummaryInput = 20000

const summaryMaxTokens = 4096

const systemPrompt = `You are an expert curator and archivist.
Read the provided web content and synthesize it into a structured JSON response.

OUTPUT FORMAT
Return one valid JSON object with exactly these keys:
{
  "title": "A short, catchy title",
  "category": "Cooking, Tech, Design, Health, Fashion, News, or Random",
  "tags": ["Tag1", "Tag2"],
  "summary": "The full formatted content in Markdown"
}

TAGGING RULES (STRICT)
- Select tags ONLY from: ["Cooking", "Baking", "Tech", "Health", "Lifestyle", "Professional"].
- Do not create new tags. If no tag fits, use "Lifestyle".
- Select exactly 2-3 tags.

SUMMARY FIELD
- Voice: clean, concise, functional.
- Start with a one-sentence synopsis.
- Use ## for headers, **bold** for key items and bullet points for lists.
- If the content is a recipe or how-to, copy the full ingredients and steps verbatim under "## Ingredients" and "## Preparation".

Respond with the JSON object only.`

// AnthropicSummarizer calls the Messages API, prefilling the assistant
// turn with "{" so the reply continues a JSON object
type AnthropicSummarizer struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAnthropicSummarizer creates a summarizer. opts are passed to the
// client after the API key, e.g. option.WithBaseURL in tests.
func NewAnthropicSummarizer(apiKey, model string, timeout time.Duration, logger *slog.Logger, opts ...option.RequestOption) *AnthropicSummarizer {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}, opts...)
	client := anthropic.NewClient(opts...)

	return &AnthropicSummarizer{
		client:  &client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, content domain.NormalizedContent) (domain.AISummary, error) {
	input, err := SummaryInput(content)
	if err != nil {
		return domain.AISummary{}, err
	}

	// The model call gets its own deadline regardless of the caller's
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: summaryMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock("{")),
		},
	})
	if err != nil {
		return domain.AISummary{}, fmt.Errorf("failed to call model: %w", err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	s.logger.Debug("Model responded",
		"model", s.model,
		"duration", time.Since(start),
		"response_chars", len(responseText),
	)

	if responseText == "" {
		return domain.AISummary{}, errors.New("model returned empty response")
	}

	summary, err := ParseSummary("{" + responseText)
	if err != nil {
		// Some replies restate the prefilled brace
		if retry, retryErr := ParseSummary(responseText); retryErr == nil {
			return retry, nil
		}
		return domain.AISummary{}, err
	}
	return summary, nil
}

// SummaryInput serializes content for the model, cut to MaxSummaryInput
// characters
func SummaryInput(content domain.NormalizedContent) (string, error) {
	b, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}
	return truncateRunes(string(b), MaxSummaryInput), nil
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

type rawSummary struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Tags     any    `json:"tags"`
	Summary  string `json:"summary"`
}

// ParseSummary decodes a model reply into an AISummary. It tolerates code
// fences and prose around the object. Missing fields take defaults; tags
// and category are coerced into their allowed sets.
func ParseSummary(text string) (domain.AISummary, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return domain.AISummary{}, errors.New("model response contains no JSON object")
	}

	var raw rawSummary
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return domain.AISummary{}, fmt.Errorf("failed to parse model response: %w", err)
	}

	summary := defaultSummary()
	if t := strings.TrimSpace(raw.Title); t != "" {
		summary.Title = t
	}
	if s := strings.TrimSpace(raw.Summary); s != "" {
		summary.Summary = s
	}
	summary.Category = domain.NormalizeCategory(raw.Category)
	summary.Tags = domain.CoerceTags(tagStrings(raw.Tags))
	return summary, nil
}

// tagStrings accepts a list of strings or a single string
func tagStrings(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return strings.Split(t, ",")
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
