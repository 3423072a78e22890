package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/domain/repository"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/console"
	"github.com/diillson/aws-log-remediator/pkg/retry"
)

// Componentes usados nos logs.
const (
	componentLister    = "lister"
	componentGenerator = "generator"
	componentNotifier  = "notifier"
	componentReport    = "report"
)

// RemediationUseCase executa o pipeline: lista os log groups, pede uma explicação
// ao modelo para cada um e publica o resultado no Slack.
type RemediationUseCase struct {
	cfg          *types.Config
	awsRepo      repository.AWSRepository
	insightRepo  repository.InsightRepository
	notifierRepo repository.NotifierRepository
	exportRepo   repository.ExportRepository
	console      types.ConsoleInterface

	policy    retry.Policy
	retryOpts []retry.Option
	now       func() time.Time
	runID     string
}

// Option personaliza o RemediationUseCase.
type Option func(*RemediationUseCase)

// WithRetryOptions repassa opções para cada chamada a retry.Do (sleeper e jitter nos testes).
func WithRetryOptions(opts ...retry.Option) Option {
	return func(uc *RemediationUseCase) { uc.retryOpts = append(uc.retryOpts, opts...) }
}

// WithClock substitui time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *RemediationUseCase) { uc.now = now }
}

// WithRunID fixa o identificador da execução.
func WithRunID(id string) Option {
	return func(uc *RemediationUseCase) { uc.runID = id }
}

// NewRemediationUseCase creates a new remediation use case.
func NewRemediationUseCase(
	cfg *types.Config,
	awsRepo repository.AWSRepository,
	insightRepo repository.InsightRepository,
	notifierRepo repository.NotifierRepository,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
	opts ...Option,
) *RemediationUseCase {
	uc := &RemediationUseCase{
		cfg:          cfg,
		awsRepo:      awsRepo,
		insightRepo:  insightRepo,
		notifierRepo: notifierRepo,
		exportRepo:   exportRepo,
		console:      console,
		policy: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			Multiplier:  cfg.Retry.Multiplier,
			MaxJitter:   cfg.Retry.MaxJitter,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.runID == "" {
		uc.runID = uuid.NewString()
	}
	return uc
}

// Run processa no máximo cfg.MaxLogGroups log groups, um por vez.
// Só retorna erro quando a listagem falha; falhas por log group viram
// AnalysisResult com Success=false e ainda são notificadas.
func (uc *RemediationUseCase) Run(ctx context.Context) (entity.RunSummary, error) {
	summary := entity.RunSummary{
		RunID:     uc.runID,
		Region:    uc.cfg.Region,
		StartedAt: uc.now(),
	}
	if err := uc.policy.Validate(); err != nil {
		return summary, err
	}
	uc.console.LogInfo("Starting run %s in %s (up to %d log groups)", summary.RunID, summary.Region, uc.cfg.MaxLogGroups)

	groups, err := uc.ListLogGroups(ctx)
	if err != nil {
		summary.FinishedAt = uc.now()
		return summary, err
	}

	uc.console.LogInfo("Found %d log groups", len(groups))
	if len(groups) == 0 {
		uc.console.WithComponent(componentLister).LogWarning("%s", types.ErrNoLogGroups)
		summary.FinishedAt = uc.now()
		return summary, nil
	}
	uc.console.Println(console.BrightCyan("Log groups selected for analysis:"))
	for i, g := range groups {
		uc.console.Printf("%d. %s\n", i+1, g.Name)
	}

	summary.AccountID = uc.accountID(ctx)
	if uc.cfg.EnrichResources {
		uc.enrich(ctx, groups)
	}

	progress := uc.console.ProgressWithTotal(len(groups), "Analyzing log groups")
	for _, g := range groups {
		result := uc.Generate(ctx, g)
		if err := uc.Notify(ctx, summary.RunID, result); err != nil {
			uc.console.WithComponent(componentNotifier).LogError("%s", err)
		} else {
			result.Notified = true
		}
		summary.Results = append(summary.Results, result)
		progress.Increment()
	}
	progress.Stop()

	summary.FinishedAt = uc.now()
	uc.console.Println()
	uc.console.Print(uc.summaryTable(summary).Render())
	uc.console.LogInfo("Run %s finished: %d succeeded, %d failed, %d notification(s) not delivered",
		summary.RunID, summary.Succeeded(), summary.Failed(), summary.Undelivered())

	if uc.cfg.SendRunSummary {
		if err := uc.NotifySummary(ctx, summary); err != nil {
			uc.console.WithComponent(componentNotifier).LogError("run summary not delivered: %s", err)
		}
	}

	uc.exportReports(ctx, summary)
	return summary, nil
}

// ListLogGroups chama o Lister sob a política de retry. Erros de autorização
// ou requisição inválida não são retentados e abortam a execução.
func (uc *RemediationUseCase) ListLogGroups(ctx context.Context) ([]entity.LogGroupDescriptor, error) {
	log := uc.console.WithComponent(componentLister)
	status := uc.console.Status("Listing CloudWatch log groups...")
	defer status.Stop()

	attempt := 0
	groups, out, err := retry.Do(ctx, uc.policy, types.IsRetryable,
		func(ctx context.Context) ([]entity.LogGroupDescriptor, error) {
			attempt++
			if attempt > 1 {
				status.Update(fmt.Sprintf("Listing CloudWatch log groups (attempt %d/%d)...", attempt, uc.policy.MaxAttempts))
			}
			return uc.awsRepo.ListLogGroups(ctx, uc.cfg.MaxLogGroups, uc.cfg.LogGroupPrefix)
		},
		uc.withRetryLog(log, "DescribeLogGroups")...,
	)
	if err != nil {
		if types.IsFatal(err) {
			log.LogError("Credentials rejected by CloudWatch Logs, aborting run: %s", err)
		} else {
			log.LogError("Listing log groups failed after %d attempt(s): %s", out.Attempts, err)
		}
		return nil, fmt.Errorf("listing log groups: %w", err)
	}

	if len(groups) > uc.cfg.MaxLogGroups {
		groups = groups[:uc.cfg.MaxLogGroups]
	}
	return groups, nil
}

// accountID é best-effort: serve apenas para identificar a conta no resumo.
func (uc *RemediationUseCase) accountID(ctx context.Context) string {
	id, err := uc.awsRepo.GetAccountID(ctx)
	if err != nil {
		uc.console.WithComponent(componentLister).LogWarning("Could not resolve account ID: %s", err)
		return ""
	}
	return id
}

func (uc *RemediationUseCase) enrich(ctx context.Context, groups []entity.LogGroupDescriptor) {
	log := uc.console.WithComponent(componentLister)
	for i := range groups {
		res, err := uc.awsRepo.DescribeSourceResource(ctx, groups[i].Name)
		if err != nil {
			log.LogWarning("Could not describe source of %s: %s", groups[i].Name, err)
			continue
		}
		groups[i].Resource = res
	}
}

// withRetryLog anexa às opções do usecase um hook que loga cada nova tentativa.
func (uc *RemediationUseCase) withRetryLog(log types.ConsoleInterface, operation string) []retry.Option {
	opts := make([]retry.Option, 0, len(uc.retryOpts)+1)
	opts = append(opts, uc.retryOpts...)
	opts = append(opts, retry.OnRetry(func(attempt int, err error, delay time.Duration) {
		log.LogWarning("%s attempt %d failed, retrying in %s: %s", operation, attempt, delay.Round(time.Millisecond), err)
	}))
	return opts
}

// errorSummary encurta erros de retry esgotado para a mensagem do Slack.
func errorSummary(err error) string {
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return fmt.Sprintf("%v (after %d attempts)", exhausted.Err, exhausted.Attempts)
	}
	return err.Error()
}
