package ai

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"lark-base-gateway/internal/config"
	"lark-base-gateway/internal/metrics"
)

const systemInstruction = "あなたは親切で丁寧な日本語アシスタントです。ユーザーの質問に対して、簡潔かつ分かりやすい日本語で回答してください。"

const (
	noAnswerReply = "申し訳ありません、回答できませんでした。"
	apiErrorReply = "申し訳ありません。OpenAI APIでエラーが発生しました。"
)

// Client answers free-text messages through the OpenAI chat-completions API.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	metrics     *metrics.Metrics
}

// NewClient creates an OpenAI-backed completion client.
func NewClient(cfg *config.OpenAIConfig, m *metrics.Metrics) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		metrics:     m,
	}
}

// Complete returns the model's answer for userText. It never fails the
// caller: any backend error is logged, counted, and replaced by a fixed
// apologetic string.
func (c *Client) Complete(ctx context.Context, userText string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.metrics.LLMRequests.Inc()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		logrus.Errorf("OpenAI completion failed: %v", err)
		c.metrics.LLMFailures.Inc()
		return apiErrorReply
	}

	if len(resp.Choices) == 0 {
		return noAnswerReply
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return noAnswerReply
	}
	return answer
}
