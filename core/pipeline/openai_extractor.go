package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/wikilens/policyref/model"
)

const (
	defaultChunkSize    = 3000
	defaultChunkOverlap = 300
	defaultTemperature  = 0.3
	defaultMaxTokens    = 1500
)

// openaiConfig holds optional configuration for the OpenAI extractor.
type openaiConfig struct {
	chunkSize   int
	overlap     int
	temperature float64
	maxTokens   int64
}

// OpenAIOption is a functional option for OpenAIExtractor.
type OpenAIOption func(*openaiConfig)

// WithChunkSize overrides the maximum chunk size in bytes.
func WithChunkSize(size int) OpenAIOption {
	return func(c *openaiConfig) {
		c.chunkSize = size
	}
}

// WithChunkOverlap overrides the overlap between consecutive chunks.
func WithChunkOverlap(overlap int) OpenAIOption {
	return func(c *openaiConfig) {
		c.overlap = overlap
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) OpenAIOption {
	return func(c *openaiConfig) {
		c.temperature = t
	}
}

// OpenAIExtractor creates an extractor backed by the OpenAI chat
// completions API. The client is passed in explicitly so callers
// control credentials and transport. Long discussions are analyzed in
// overlapping chunks per category and the per-chunk results are merged
// with cross-chunk deduplication by shortcut.
func OpenAIExtractor(client oai.Client, modelName string, opts ...OpenAIOption) ExtractFunc {
	cfg := &openaiConfig{
		chunkSize:   defaultChunkSize,
		overlap:     defaultChunkOverlap,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}
	for _, o := range opts {
		o(cfg)
	}

	return func(ctx context.Context, htmlStr string, plainText string) ([]model.Candidate, error) {
		chunks := chunkText(plainText, cfg.chunkSize, cfg.overlap)

		var candidates []model.Candidate
		seen := make(map[model.Category]map[string]bool)

		for _, category := range model.AllCategories {
			seen[category] = make(map[string]bool)

			for _, chunk := range chunks {
				content, err := completeChunk(ctx, client, modelName, cfg, category, chunk)
				if err != nil {
					return nil, fmt.Errorf("openai extraction for %s: %w", category.Plural(), err)
				}

				for _, cand := range parseMentionLines(category, content) {
					if seen[category][cand.Shortcut] {
						continue
					}
					seen[category][cand.Shortcut] = true
					candidates = append(candidates, cand)
				}
			}
		}

		return candidates, nil
	}
}

func completeChunk(ctx context.Context, client oai.Client, modelName string, cfg *openaiConfig, category model.Category, chunk string) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(modelName),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(analysisPrompt(category, chunk)),
		},
		Temperature:         param.NewOpt(cfg.temperature),
		MaxCompletionTokens: param.NewOpt(cfg.maxTokens),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// mentionLine validates the shortcut field of a response line.
var mentionLine = regexp.MustCompile(`^(?:WP|MOS):[A-Z0-9]+$`)

// parseMentionLines parses a model response in the "SHORTCUT | quote"
// line format. Lines that do not carry a valid shortcut are dropped, as
// is the NONE marker and any prose the model adds around the list.
func parseMentionLines(category model.Category, content string) []model.Candidate {
	var candidates []model.Candidate

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "NONE") {
			continue
		}

		shortcut, quote, found := strings.Cut(line, "|")
		if !found {
			continue
		}
		shortcut = strings.ToUpper(strings.TrimSpace(shortcut))
		if !mentionLine.MatchString(shortcut) {
			continue
		}

		quote = strings.TrimSpace(quote)
		quote = strings.Trim(quote, `"`)

		candidates = append(candidates, model.Candidate{
			Category: category,
			Shortcut: shortcut,
			Quote:    quote,
			Href:     ShortcutHref(shortcut),
		})
	}

	return candidates
}
