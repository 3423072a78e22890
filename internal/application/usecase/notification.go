package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/retry"
)

// Cores das mensagens (nomes aceitos pelos attachments do Slack).
const (
	colorSuccess = "good"
	colorFailure = "danger"
	colorWarning = "warning"
)

// maxExplanationChars mantém a mensagem abaixo do limite de texto de um attachment.
const maxExplanationChars = 3000

// FormatNotification transforma um AnalysisResult na mensagem publicada.
func FormatNotification(runID string, r entity.AnalysisResult) entity.Notification {
	footer := "log-remediator"
	if runID != "" {
		footer += " | run " + runID
	}

	if r.Success {
		return entity.Notification{
			Title:    fmt.Sprintf(":mag: %s", r.LogGroupName),
			Text:     truncate(r.Explanation, maxExplanationChars),
			Fallback: fmt.Sprintf("Analysis of %s ready (%s)", r.LogGroupName, r.ElapsedLabel()),
			Color:    colorSuccess,
			Fields: []entity.NotificationField{
				{Title: "Elapsed", Value: r.ElapsedLabel(), Short: true},
				{Title: "Model", Value: r.Model, Short: true},
			},
			Footer: footer,
		}
	}

	errText := r.Error
	if errText == "" {
		errText = "unknown error"
	}
	return entity.Notification{
		Title:    fmt.Sprintf(":x: %s", r.LogGroupName),
		Text:     fmt.Sprintf("Analysis failed: %s", truncate(errText, maxExplanationChars)),
		Fallback: fmt.Sprintf("Analysis of %s failed", r.LogGroupName),
		Color:    colorFailure,
		Fields: []entity.NotificationField{
			{Title: "Attempts", Value: strconv.Itoa(r.Attempts), Short: true},
			{Title: "Elapsed", Value: r.ElapsedLabel(), Short: true},
		},
		Footer: footer,
	}
}

// FormatSummaryNotification monta a mensagem opcional de fim de execução.
func FormatSummaryNotification(s entity.RunSummary) entity.Notification {
	color := colorSuccess
	switch {
	case len(s.Results) > 0 && s.Succeeded() == 0:
		color = colorFailure
	case s.Failed() > 0:
		color = colorWarning
	}

	account := s.AccountID
	if account == "" {
		account = "unknown"
	}

	var failed []string
	for _, r := range s.Results {
		if !r.Success {
			failed = append(failed, r.LogGroupName)
		}
	}
	text := fmt.Sprintf("Processed %d log group(s) in %s.", len(s.Results), s.Duration().Round(time.Millisecond))
	if len(failed) > 0 {
		text += "\nFailed: " + strings.Join(failed, ", ")
	}

	return entity.Notification{
		Title:    "Log remediation run finished",
		Text:     text,
		Fallback: fmt.Sprintf("Run %s: %d ok, %d failed", s.RunID, s.Succeeded(), s.Failed()),
		Color:    color,
		Fields: []entity.NotificationField{
			{Title: "Succeeded", Value: strconv.Itoa(s.Succeeded()), Short: true},
			{Title: "Failed", Value: strconv.Itoa(s.Failed()), Short: true},
			{Title: "Account", Value: account, Short: true},
			{Title: "Region", Value: s.Region, Short: true},
		},
		Footer: "log-remediator | run " + s.RunID,
	}
}

// Notify publica o resultado sob a política de retry. Se a entrega falhar,
// devolve um *types.NotificationDeliveryError para ser apenas logado.
func (uc *RemediationUseCase) Notify(ctx context.Context, runID string, r entity.AnalysisResult) error {
	return uc.post(ctx, r.LogGroupName, FormatNotification(runID, r))
}

// NotifySummary publica o resumo da execução.
func (uc *RemediationUseCase) NotifySummary(ctx context.Context, s entity.RunSummary) error {
	return uc.post(ctx, "run summary", FormatSummaryNotification(s))
}

func (uc *RemediationUseCase) post(ctx context.Context, subject string, n entity.Notification) error {
	log := uc.console.WithComponent(componentNotifier)
	_, out, err := retry.Do(ctx, uc.policy, types.IsRetryable,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, uc.notifierRepo.Post(ctx, n)
		},
		uc.withRetryLog(log, "webhook post for "+subject)...,
	)
	if err != nil {
		return &types.NotificationDeliveryError{LogGroup: subject, Attempts: out.Attempts, Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
