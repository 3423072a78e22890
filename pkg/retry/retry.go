// Package retry executa operações contra APIs externas com backoff exponencial,
// jitter limitado e classificação de falhas (retentável vs. fatal).
//
// Cada chamada a Do percorre a máquina de estados
//
//	Pending → Attempting → {Succeeded, RetryWait, Failed}
//
// e RetryWait sempre volta para Attempting com attempt+1.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// State representa o estado de uma operação dentro da política de retry.
type State int

const (
	StatePending State = iota
	StateAttempting
	StateRetryWait
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateRetryWait:
		return "retry-wait"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Policy define os parâmetros de backoff de uma operação.
type Policy struct {
	// MaxAttempts conta a tentativa inicial. Valores < 1 são tratados como 1.
	MaxAttempts int
	// BaseDelay é o atraso antes da segunda tentativa.
	BaseDelay time.Duration
	// Multiplier é aplicado a cada nova tentativa (2.0 dobra o atraso).
	Multiplier float64
	// MaxJitter é o limite superior do jitter aleatório somado ao atraso.
	MaxJitter time.Duration
	// MaxDelay limita o atraso calculado. Zero significa sem limite.
	MaxDelay time.Duration
}

// DefaultPolicy retorna a política padrão: 3 tentativas, 1s, 2s com até 250ms de jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		Multiplier:  2.0,
		MaxJitter:   250 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// Validate verifica se os parâmetros da política fazem sentido.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry: max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("retry: base delay must not be negative, got %s", p.BaseDelay)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("retry: multiplier must be >= 1, got %g", p.Multiplier)
	}
	if p.MaxJitter < 0 {
		return fmt.Errorf("retry: max jitter must not be negative, got %s", p.MaxJitter)
	}
	if p.MaxDelay < 0 {
		return fmt.Errorf("retry: max delay must not be negative, got %s", p.MaxDelay)
	}
	return nil
}

// Delay retorna o atraso sem jitter aplicado depois da tentativa attempt (1-based):
// BaseDelay * Multiplier^(attempt-1), limitado por MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Classifier decide se um erro é retentável. Erros não retentáveis encerram
// a operação imediatamente.
type Classifier func(err error) bool

// Operation é a unidade de trabalho executada pela política.
type Operation[T any] func(ctx context.Context) (T, error)

// Outcome descreve como a operação terminou.
type Outcome struct {
	State    State
	Attempts int
	// Delays contém cada espera efetivamente feita entre tentativas, jitter incluído.
	Delays []time.Duration
}

// ExhaustedError é retornado quando todas as tentativas falharam com erros retentáveis.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Sleeper suspende a execução por d ou até o contexto ser cancelado.
type Sleeper func(ctx context.Context, d time.Duration) error

// JitterFunc retorna um valor em [0, limit].
type JitterFunc func(limit time.Duration) time.Duration

// RetryHook é chamado antes de cada espera.
type RetryHook func(attempt int, err error, delay time.Duration)

// TransitionHook é chamado a cada mudança de estado.
type TransitionHook func(from, to State)

type options struct {
	sleep        Sleeper
	jitter       JitterFunc
	onRetry      RetryHook
	onTransition TransitionHook
}

// Option personaliza uma chamada a Do.
type Option func(*options)

// WithSleeper substitui a espera real (útil em testes).
func WithSleeper(s Sleeper) Option {
	return func(o *options) { o.sleep = s }
}

// WithJitter substitui a fonte de jitter aleatório.
func WithJitter(j JitterFunc) Option {
	return func(o *options) { o.jitter = j }
}

// OnRetry registra um hook executado antes de cada espera.
func OnRetry(h RetryHook) Option {
	return func(o *options) { o.onRetry = h }
}

// OnTransition registra um hook executado a cada transição de estado.
func OnTransition(h TransitionHook) Option {
	return func(o *options) { o.onTransition = h }
}

// retryDelayer é implementado por erros que carregam uma dica do servidor
// (ex.: cabeçalho Retry-After).
type retryDelayer interface {
	RetryDelay() time.Duration
}

// Do executa op segundo a política p. Falhas classificadas como retentáveis
// são repetidas até p.MaxAttempts; as demais encerram na hora, sem espera.
func Do[T any](ctx context.Context, p Policy, retryable Classifier, op Operation[T], opts ...Option) (T, Outcome, error) {
	o := options{sleep: sleepContext, jitter: randomJitter}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	out := Outcome{State: StatePending}
	transition := func(to State) {
		if o.onTransition != nil {
			o.onTransition(out.State, to)
		}
		out.State = to
	}

	maxAttempts := p.attempts()
	for {
		transition(StateAttempting)
		out.Attempts++

		value, err := op(ctx)
		if err == nil {
			transition(StateSucceeded)
			return value, out, nil
		}

		if retryable == nil || !retryable(err) {
			transition(StateFailed)
			return zero, out, err
		}

		if out.Attempts >= maxAttempts {
			transition(StateFailed)
			return zero, out, &ExhaustedError{Attempts: out.Attempts, Err: err}
		}

		transition(StateRetryWait)
		delay := p.Delay(out.Attempts)
		var hint retryDelayer
		if errors.As(err, &hint) && hint.RetryDelay() > delay {
			delay = hint.RetryDelay()
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}
		if p.MaxJitter > 0 {
			delay += o.jitter(p.MaxJitter)
		}

		if o.onRetry != nil {
			o.onRetry(out.Attempts, err, delay)
		}
		if serr := o.sleep(ctx, delay); serr != nil {
			transition(StateFailed)
			return zero, out, fmt.Errorf("retry wait interrupted after attempt %d: %w", out.Attempts, serr)
		}
		out.Delays = append(out.Delays, delay)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(limit) + 1))
}
