package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/liuyu-2003-arch/Sino-US-Pulse/services/comparison/datatypes"
)

// chatCompleter is the slice of the OpenAI client this package uses,
// extracted so tests can substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator produces comparison artifacts by asking a chat model for
// a strict-JSON document and decoding it.
type OpenAIGenerator struct {
	chat  chatCompleter
	model string
}

// NewOpenAIGenerator reads OPENAI_API_KEY (falling back to the container
// secret) and OPENAI_MODEL from the environment.
func NewOpenAIGenerator() (*OpenAIGenerator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL") // e.g., "gpt-4o"
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API Key from Podman Secrets")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	slog.Info("Initializing OpenAI generator", "model", model)
	return &OpenAIGenerator{
		chat:  openai.NewClient(apiKey),
		model: model,
	}, nil
}

const systemPrompt = `You are a data analyst producing USA-vs-China comparisons.
Respond with a single JSON object and nothing else, using exactly these fields:
{
  "title": "display title in the requested language",
  "titleEn": "English title",
  "titleZh": "Chinese title (Chinese characters)",
  "category": "one of: economy, military, society, environment, energy, industry, technology",
  "unit": "measurement unit for the values",
  "samples": [{"year": "2020", "usa": 0.0, "china": 0.0}],
  "summary": "2-3 sentence comparison summary",
  "detailedAnalysis": "several paragraphs of analysis",
  "futureOutlook": "expected trajectory for both countries",
  "citations": [{"sourceTitle": "...", "sourceUrl": "https://..."}]
}
Provide at least 5 yearly samples of real published figures. Years are
4-digit strings. Values are plain numbers, no separators. Cite primary
sources (World Bank, IMF, SIPRI, national statistics bureaus).`

// Generate implements archive.Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, requestText, locale string) (*datatypes.ComparisonArtifact, error) {
	slog.Debug("Generating comparison via OpenAI", "model", g.model, "locale", locale)

	language := "English"
	if locale == "zh" {
		language = "Chinese"
	}
	userPrompt := fmt.Sprintf(
		"Compare the USA and China on the following metric: %s\nWrite the title, summary, detailedAnalysis and futureOutlook in %s.",
		requestText, language)

	resp, err := g.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err)
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices")
		return nil, fmt.Errorf("OpenAI returned no choices")
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)
	var artifact datatypes.ComparisonArtifact
	if err := json.Unmarshal([]byte(content), &artifact); err != nil {
		slog.Error("OpenAI response is not valid JSON", "error", err)
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	// Some models fill only the per-language titles.
	if artifact.Title == "" {
		if locale == "zh" && artifact.TitleZh != "" {
			artifact.Title = artifact.TitleZh
		} else {
			artifact.Title = artifact.TitleEn
		}
	}

	slog.Debug("Received comparison from OpenAI",
		"finish_reason", resp.Choices[0].FinishReason, "samples", len(artifact.Samples))
	return &artifact, nil
}

// stripCodeFences removes a surrounding markdown code fence. Models
// occasionally wrap JSON output in ```json blocks even when told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
