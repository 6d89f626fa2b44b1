package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

const goodResponse = `{
	"title": "GDP",
	"titleEn": "GDP",
	"titleZh": "国内生产总值",
	"category": "economy",
	"unit": "trillion USD",
	"samples": [
		{"year": "2022", "usa": 25.74, "china": 17.88},
		{"year": "2023", "usa": 27.36, "china": 17.79}
	],
	"summary": "The United States leads in nominal GDP.",
	"citations": [{"sourceTitle": "World Bank", "sourceUrl": "https://data.worldbank.org"}]
}`

func TestGenerate_DecodesArtifact(t *testing.T) {
	chat := &fakeChat{content: goodResponse}
	gen := &OpenAIGenerator{chat: chat, model: "gpt-4o-mini"}

	artifact, err := gen.Generate(context.Background(), "GDP comparison", "en")

	require.NoError(t, err)
	assert.Equal(t, "GDP", artifact.Title)
	require.Len(t, artifact.Samples, 2)
	assert.Equal(t, 17.88, artifact.Samples[0].China)
	require.NoError(t, artifact.Validate())

	// Strict JSON mode is always requested.
	require.NotNil(t, chat.lastReq.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, chat.lastReq.ResponseFormat.Type)
}

func TestGenerate_StripsMarkdownFence(t *testing.T) {
	chat := &fakeChat{content: "```json\n" + goodResponse + "\n```"}
	gen := &OpenAIGenerator{chat: chat, model: "gpt-4o-mini"}

	artifact, err := gen.Generate(context.Background(), "GDP comparison", "en")

	require.NoError(t, err)
	assert.Equal(t, "GDP", artifact.Title)
}

func TestGenerate_LocaleSelectsLanguageAndTitle(t *testing.T) {
	chat := &fakeChat{content: `{
		"titleEn": "GDP",
		"titleZh": "国内生产总值",
		"samples": [{"year": "2023", "usa": 27.36, "china": 17.79}],
		"summary": "总结"
	}`}
	gen := &OpenAIGenerator{chat: chat, model: "gpt-4o-mini"}

	artifact, err := gen.Generate(context.Background(), "GDP对比", "zh")

	require.NoError(t, err)
	assert.Equal(t, "国内生产总值", artifact.Title)
	assert.Contains(t, chat.lastReq.Messages[1].Content, "Chinese")
}

func TestGenerate_BackendError(t *testing.T) {
	gen := &OpenAIGenerator{chat: &fakeChat{err: errors.New("rate limited")}, model: "gpt-4o-mini"}

	_, err := gen.Generate(context.Background(), "GDP comparison", "en")

	assert.Error(t, err)
}

func TestGenerate_NonJSONResponse(t *testing.T) {
	gen := &OpenAIGenerator{chat: &fakeChat{content: "Sorry, I cannot help with that."}, model: "gpt-4o-mini"}

	_, err := gen.Generate(context.Background(), "GDP comparison", "en")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode model response")
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}
