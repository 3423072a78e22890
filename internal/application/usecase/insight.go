package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/diillson/aws-log-remediator/pkg/retry"
)

const systemPrompt = `You are a senior AWS operations engineer. Given a CloudWatch Logs log group, explain in plain language what is most likely writing to it and what those logs are useful for. Then list up to three concrete remediation or hygiene actions (retention, cost, noisy logging, missing alarms). Be concise: at most 120 words, no preamble.`

// buildUserPrompt monta o prompt fixo para um log group.
func buildUserPrompt(g entity.LogGroupDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Log group: %s\n", g.Name)
	if g.Region != "" {
		fmt.Fprintf(&b, "Region: %s\n", g.Region)
	}
	fmt.Fprintf(&b, "Retention: %s\n", g.RetentionLabel())
	fmt.Fprintf(&b, "Stored data: %.2f GB\n", g.StoredGB())
	if !g.CreationTime.IsZero() {
		fmt.Fprintf(&b, "Created: %s\n", g.CreationTime.Format("2006-01-02"))
	}

	if g.Resource != nil {
		fmt.Fprintf(&b, "Source resource: %s %s\n", g.Resource.Type, g.Resource.ID)
		keys := make([]string, 0, len(g.Resource.Attributes))
		for k := range g.Resource.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, g.Resource.Attributes[k])
		}
	}

	b.WriteString("\nExplain this log group and suggest remediation steps.")
	return b.String()
}

// Generate pede a explicação de um log group. Sempre devolve um resultado:
// em falha fatal ou retry esgotado, Success=false e Error preenchido.
func (uc *RemediationUseCase) Generate(ctx context.Context, g entity.LogGroupDescriptor) entity.AnalysisResult {
	log := uc.console.WithComponent(componentGenerator)
	result := entity.AnalysisResult{
		LogGroupName: g.Name,
		Model:        uc.insightRepo.Model(),
	}

	prompt := buildUserPrompt(g)
	start := uc.now()
	text, out, err := retry.Do(ctx, uc.policy, types.IsRetryable,
		func(ctx context.Context) (string, error) {
			return uc.insightRepo.Complete(ctx, systemPrompt, prompt)
		},
		uc.withRetryLog(log, "completion for "+g.Name)...,
	)
	result.Elapsed = uc.now().Sub(start)
	result.Attempts = out.Attempts

	if err != nil {
		result.Error = errorSummary(err)
		log.LogError("Analysis of %s failed after %d attempt(s): %s", g.Name, out.Attempts, result.Error)
		return result
	}

	result.Success = true
	result.Explanation = text
	log.LogSuccess("Analyzed %s in %s", g.Name, result.Elapsed.Round(time.Millisecond))
	return result
}
