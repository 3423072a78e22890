package entity

import "time"

// RunSummary agrega o resultado de uma execução.
type RunSummary struct {
	RunID      string           `json:"run_id"`
	AccountID  string           `json:"account_id,omitempty"`
	Region     string           `json:"region"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Results    []AnalysisResult `json:"results"`
}

// Succeeded conta os resultados com sucesso.
func (s RunSummary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// Failed conta os resultados com falha.
func (s RunSummary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// Undelivered conta as notificações que não chegaram ao Slack.
func (s RunSummary) Undelivered() int {
	n := 0
	for _, r := range s.Results {
		if !r.Notified {
			n++
		}
	}
	return n
}

// Duration retorna a duração total da execução.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
