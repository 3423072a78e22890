package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoLogGroups      = errors.New("no CloudWatch log groups found in the configured region")
	ErrEmptyCompletion  = errors.New("language model returned an empty completion")
	ErrMissingComponent = errors.New("component must not be nil")
)

// ConfigurationError indica que configurações obrigatórias estão ausentes ou inválidas.
// É fatal e aborta a execução antes de qualquer chamada de rede.
type ConfigurationError struct {
	Missing []string
	Invalid map[string]string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required settings: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		keys := sortedKeys(e.Invalid)
		invalid := make([]string, 0, len(keys))
		for _, k := range keys {
			invalid = append(invalid, fmt.Sprintf("%s (%s)", k, e.Invalid[k]))
		}
		parts = append(parts, "invalid settings: "+strings.Join(invalid, ", "))
	}
	if len(parts) == 0 {
		return "configuration error"
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// HasProblems informa se algum campo foi marcado como ausente ou inválido.
func (e *ConfigurationError) HasProblems() bool {
	return len(e.Missing) > 0 || len(e.Invalid) > 0
}

// AuthorizationError representa falha de credencial ou permissão. Nunca é retentado.
type AuthorizationError struct {
	Component string
	Err       error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: authorization failed: %v", e.Component, e.Err)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// RateLimitError representa HTTP 429 ou throttling do provedor. É retentável.
type RateLimitError struct {
	Component  string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (retry after %s): %v", e.Component, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s: rate limited: %v", e.Component, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// RetryDelay expõe a dica de Retry-After para a política de retry.
func (e *RateLimitError) RetryDelay() time.Duration { return e.RetryAfter }

// TransientNetworkError cobre 5xx, timeouts e falhas de conexão. É retentável.
type TransientNetworkError struct {
	Component string
	Err       error
}

func (e *TransientNetworkError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Component, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// InvalidRequestError representa requisição malformada ou recurso inexistente. Fatal.
type InvalidRequestError struct {
	Component string
	Err       error
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: invalid request: %v", e.Component, e.Err)
}

func (e *InvalidRequestError) Unwrap() error { return e.Err }

// NotificationDeliveryError é registrado quando o webhook falha após os retries.
// Apenas logado, nunca aborta a execução.
type NotificationDeliveryError struct {
	LogGroup string
	Attempts int
	Err      error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("notification for %q not delivered after %d attempt(s): %v", e.LogGroup, e.Attempts, e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error { return e.Err }

// IsRetryable é o predicado de classificação compartilhado pelo Lister,
// pelo gerador de insights e pelo notificador.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var tn *TransientNetworkError
	return errors.As(err, &tn)
}

// IsFatal informa se o erro é de credencial/permissão.
func IsFatal(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
