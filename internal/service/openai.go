package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/config"
)

// roleMap converts backend-neutral roles into SDK message params
var roleMap = map[string]func(string) openai.ChatCompletionMessageParamUnion{
	RoleSystem:    openai.SystemMessage[string],
	RoleUser:      openai.UserMessage[string],
	RoleAssistant: openai.AssistantMessage[string],
}

// OpenAIBackend handles OpenAI-compatible chat completions
type OpenAIBackend struct {
	config  *config.OpenAIConfig
	client  *openai.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewOpenAIBackend creates a backend for any OpenAI-compatible endpoint
func NewOpenAIBackend(cfg *config.OpenAIConfig, logger *zap.Logger) *OpenAIBackend {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.APIBase),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.ExtractTimeout()}),
	)

	logger.Info("language backend configured",
		zap.String("base_url", cfg.APIBase),
		zap.String("model", cfg.ChatModel),
		zap.Bool("enabled", cfg.Enabled),
		zap.Float64("requests_per_second", cfg.RequestsPerSecond),
	)

	return &OpenAIBackend{
		config:  cfg,
		client:  &client,
		limiter: newLimiter(cfg.RequestsPerSecond),
		logger:  logger,
	}
}

// IsEnabled returns whether the backend is configured and ready
func (b *OpenAIBackend) IsEnabled() bool {
	return b.config.Enabled
}

// Complete sends a JSON-mode chat completion request and returns the reply text
func (b *OpenAIBackend) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if !b.config.Enabled {
		return "", &UpstreamError{Kind: FailureUnavailable, Err: errors.New("OpenAI API is not enabled (missing API key)")}
	}

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// the wait would outlast the deadline
			return "", &UpstreamError{Kind: FailureRateLimited, Err: err}
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(b.config.ChatModel),
		Messages:    convertMessages(messages),
		Temperature: openai.Float(b.config.ChatTemperature),
		MaxTokens:   openai.Int(int64(b.config.ChatMaxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	completion, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		classified := classifyError(ctx, err)
		if kind := FailureKindOf(classified); kind != FailureNone {
			b.logger.Warn("language backend request failed",
				zap.String("kind", kind.String()),
				zap.Error(err),
			)
		}
		return "", classified
	}

	if len(completion.Choices) == 0 {
		b.logger.Warn("language backend returned no choices", zap.String("model", b.config.ChatModel))
		return "", nil
	}

	return completion.Choices[0].Message.Content, nil
}

// newLimiter returns nil when throttling is disabled
func newLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	burst := int(math.Max(1, math.Ceil(requestsPerSecond)))
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func convertMessages(messages []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		if fn, ok := roleMap[msg.Role]; ok {
			out = append(out, fn(msg.Content))
		}
	}
	return out
}

// classifyError maps a provider failure onto the closed failure set.
// Caller cancellation is returned as the context error and is not a provider failure.
func classifyError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests && isQuotaError(apiErr):
			return &UpstreamError{Kind: FailureQuotaExhausted, Err: err}
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &UpstreamError{Kind: FailureRateLimited, Err: err}
		case apiErr.StatusCode == http.StatusPaymentRequired:
			return &UpstreamError{Kind: FailureQuotaExhausted, Err: err}
		}
	}

	return &UpstreamError{Kind: FailureUnavailable, Err: err}
}

// quotaMarkers identify a 429 that will not clear by waiting
var quotaMarkers = []string{
	"insufficient_quota",
	"exceeded your current quota",
	"billing",
	"credit balance",
}

func isQuotaError(apiErr *openai.Error) bool {
	// Error() carries the raw body, for providers that do not follow the OpenAI error envelope
	text := strings.ToLower(apiErr.Code + " " + apiErr.Type + " " + apiErr.Message + " " + apiErr.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
