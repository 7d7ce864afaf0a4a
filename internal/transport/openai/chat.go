package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/metrics"
)

// Chat is a chat-completion client used for contextual compression and evaluation.
type Chat struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// ChatConfig holds the chat-completion settings.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewChat creates an OpenAI-compatible chat-completion client.
func NewChat(cfg *ChatConfig) *Chat {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{
		client:      newClient(cfg.APIKey, cfg.BaseURL),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Complete sends one system+user exchange and returns the trimmed assistant reply.
func (c *Chat) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, "error").Inc()
		c.logger.Warn("Chat completion failed", zap.String("model", c.model), zap.Duration("duration", duration), zap.Error(err))
		return "", wrapAPIError("chat", err, domain.ErrLLMProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("empty chat completion response: %w", domain.ErrLLMProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
