package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"suggest/internal/port"
)

// OpenAIGateway implements the structured-output model gateway on the
// Chat Completions API with JSON mode. A response that fails to decode
// into the caller's schema is reported as an error, the same as a
// network failure, so callers have a single fallback path.
type OpenAIGateway struct {
	client *openai.Client
}

func NewOpenAIGateway(apiKey string) *OpenAIGateway {
	return &OpenAIGateway{client: openai.NewClient(apiKey)}
}

// NewOpenAICompatibleGateway points the gateway at any OpenAI-compatible
// endpoint (local or hosted).
func NewOpenAICompatibleGateway(apiKey, baseURL string) *OpenAIGateway {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIGateway{client: openai.NewClientWithConfig(cfg)}
}

func (g *OpenAIGateway) Generate(ctx context.Context, req port.GenerateRequest, out any) error {
	maxTokens := req.Options.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	messages := []openai.ChatCompletionMessage{}
	if req.SystemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemMessage,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Options.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Options.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("model returned no choices")
	}

	content := extractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("response does not match requested schema: %w", err)
	}
	return nil
}

var _ port.ModelGateway = (*OpenAIGateway)(nil)

// extractJSON pulls the JSON object out of a response that may be
// wrapped in markdown fences or prose.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
