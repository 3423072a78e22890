package slack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/slack-go/slack"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/domain/repository"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
)

const (
	component = "slack"
	username  = "log-remediator"
)

// NotifierRepositoryImpl entrega notificações via incoming webhook.
type NotifierRepositoryImpl struct {
	webhookURL string
	channel    string
	httpClient *http.Client
}

// NewNotifierRepository cria o notificador com a URL do webhook e o timeout configurados.
func NewNotifierRepository(cfg *types.Config) repository.NotifierRepository {
	return &NotifierRepositoryImpl{
		webhookURL: cfg.SlackWebhookURL,
		channel:    cfg.SlackChannel,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Post faz exatamente um POST no webhook. O retry fica com o chamador.
func (r *NotifierRepositoryImpl) Post(ctx context.Context, n entity.Notification) error {
	if err := slack.PostWebhookCustomHTTPContext(ctx, r.webhookURL, r.httpClient, buildMessage(r.channel, n)); err != nil {
		return classifySlackError(err)
	}
	return nil
}

func buildMessage(channel string, n entity.Notification) *slack.WebhookMessage {
	fields := make([]slack.AttachmentField, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, slack.AttachmentField{Title: f.Title, Value: f.Value, Short: f.Short})
	}

	return &slack.WebhookMessage{
		Channel:  channel,
		Username: username,
		Attachments: []slack.Attachment{
			{
				Color:      n.Color,
				Fallback:   n.Fallback,
				Title:      n.Title,
				Text:       n.Text,
				Fields:     fields,
				Footer:     n.Footer,
				MarkdownIn: []string{"text", "fields"},
			},
		},
	}
}

func classifySlackError(err error) error {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return &types.RateLimitError{Component: component, RetryAfter: rateLimited.RetryAfter, Err: err}
	}

	// slack-go devolve o erro do ParseInt quando o 429 chega sem Retry-After.
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return &types.RateLimitError{Component: component, Err: err}
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		switch code := statusErr.Code; {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return &types.AuthorizationError{Component: component, Err: err}
		case code == http.StatusRequestTimeout || code >= 500:
			return &types.TransientNetworkError{Component: component, Err: err}
		default:
			// 400 invalid_payload, 404 no_service, 410 channel_is_archived...
			return &types.InvalidRequestError{Component: component, Err: err}
		}
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
