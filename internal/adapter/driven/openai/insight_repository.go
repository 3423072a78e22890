package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/diillson/aws-log-remediator/internal/domain/repository"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
)

const (
	component = "openai"

	defaultMaxTokens   = 600
	defaultTemperature = 0.2

	// Tipo/código devolvidos pela API quando a conta está sem crédito.
	insufficientQuota = "insufficient_quota"
)

// InsightRepositoryImpl implementa o InsightRepository sobre a API de chat completions.
type InsightRepositoryImpl struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewInsightRepository cria o cliente com a chave, o modelo, a URL base e o timeout configurados.
func NewInsightRepository(cfg *types.Config) repository.InsightRepository {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	model := cfg.OpenAIModel
	if model == "" {
		model = types.DefaultOpenAIModel
	}

	return &InsightRepositoryImpl{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: defaultMaxTokens,
	}
}

// Model retorna o modelo usado nas requisições.
func (r *InsightRepositoryImpl) Model() string {
	return r.model
}

// Complete envia uma única requisição de chat completion. Não há retry aqui.
func (r *InsightRepositoryImpl) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   r.maxTokens,
		Temperature: defaultTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &types.InvalidRequestError{Component: component, Err: types.ErrEmptyCompletion}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &types.InvalidRequestError{Component: component, Err: types.ErrEmptyCompletion}
	}
	return text, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		quota := apiErr.Type == insufficientQuota || fmt.Sprint(apiErr.Code) == insufficientQuota
		return classifyStatus(apiErr.HTTPStatusCode, quota, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return classifyStatus(reqErr.HTTPStatusCode, false, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &types.TransientNetworkError{Component: component, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &types.TransientNetworkError{Component: component, Err: err}
	}
	return fmt.Errorf("%s: %w", component, err)
}

func classifyStatus(status int, quota bool, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &types.AuthorizationError{Component: component, Err: err}
	case status == http.StatusTooManyRequests && quota:
		// Sem crédito não se resolve esperando.
		return &types.AuthorizationError{Component: component, Err: err}
	case status == http.StatusTooManyRequests:
		return &types.RateLimitError{Component: component, Err: err}
	case status == http.StatusRequestTimeout || status >= 500:
		return &types.TransientNetworkError{Component: component, Err: err}
	case status >= 400:
		return &types.InvalidRequestError{Component: component, Err: err}
	}
	return fmt.Errorf("%s: unexpected status %d: %w", component, status, err)
}
