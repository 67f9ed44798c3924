// Package translate rewrites the texts of a document track into another
// language through a hosted model.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/mgpai22/freespeech/internal/llmjson"
	"github.com/mgpai22/freespeech/internal/pool"
)

const DefaultBatchSize = 50

// single text item to translate
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated text item
type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Translator translates one batch in a single request.
type Translator interface {
	TranslateBatch(ctx context.Context, items []Item) ([]Result, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
}

var knownModels = map[Provider][]string{
	ProviderGemini: {
		"gemini-3-pro-preview", "gemini-3-flash-preview",
		"gemini-2.5-pro", "gemini-2.5-flash", "gemini-2.5-flash-lite",
	},
	ProviderOpenAI: {
		"o1", "o3-mini", "o1-pro", "o3", "gpt-5", "gpt-5-nano", "gpt-5-mini",
		"gpt-5-pro", "gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
	},
}

// KnownModel reports whether model is a tested model of provider.
// Providers without a list accept any model.
func KnownModel(provider Provider, model string) bool {
	models, ok := knownModels[provider]
	return !ok || slices.Contains(models, model)
}

// KnownModels lists the tested models of provider.
func KnownModels(provider Provider) []string {
	return slices.Clone(knownModels[provider])
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(apiKey, opts), nil
	case ProviderAnthropic:
		return NewAnthropicTranslator(apiKey, opts), nil
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// Translate splits items into batches of batchSize and sends up to
// concurrency batches at once. Results come back ordered by index.
func Translate(
	ctx context.Context,
	t Translator,
	items []Item,
	batchSize, concurrency int,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var batches [][]Item
	for batch := range slices.Chunk(items, batchSize) {
		batches = append(batches, batch)
	}

	out, err := pool.Map(ctx, batches, concurrency,
		func(ctx context.Context, i int, batch []Item) ([]Result, error) {
			results, err := t.TranslateBatch(ctx, batch)
			if err != nil {
				return nil, fmt.Errorf("batch %d failed: %w", i, err)
			}
			if len(results) != len(batch) {
				return nil, fmt.Errorf("batch %d: expected %d results, got %d", i, len(batch), len(results))
			}
			return results, nil
		})
	if err != nil {
		return nil, err
	}

	all := slices.Concat(out...)
	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })
	return all, nil
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		fmt.Fprintf(&sb, "Translate the following %s caption texts to %s.\n\n", opts.InputLanguage, opts.TargetLanguage)
	} else {
		fmt.Fprintf(&sb, "Translate the following caption texts to %s.\n\n", opts.TargetLanguage)
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the text content, preserving the meaning.\n")
	sb.WriteString("2. Keep the translation about as long as the original so it fits the same time slot.\n")
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("5. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", opts.Prompt)
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}

// parseResults pulls the result array out of a model reply.
func parseResults(provider, text string, expected int) ([]Result, error) {
	if text == "" {
		return nil, fmt.Errorf("no text in %s response", provider)
	}

	cleaned := llmjson.Clean(text)
	results, err := extractResults(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)", err, llmjson.Truncate(cleaned, 200))
	}
	if len(results) != expected {
		return nil, fmt.Errorf("expected %d results, got %d", expected, len(results))
	}
	return results, nil
}

func extractResults(text string) ([]Result, error) {
	return llmjson.Extract(text, validateResults, "results", "translations", "data", "items")
}

func validateResults(results []Result) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}
