package entity

import "time"

// AnalysisResult é o resultado do gerador de insights para um log group.
// Sempre é produzido, mesmo quando a chamada ao modelo falha.
type AnalysisResult struct {
	LogGroupName string        `json:"log_group_name"`
	Explanation  string        `json:"explanation,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Attempts     int           `json:"attempts"`
	Model        string        `json:"model,omitempty"`
	// Notified indica se a mensagem chegou ao Slack.
	Notified bool `json:"notified"`
}

// ElapsedLabel formata a duração com precisão de milissegundos.
func (r AnalysisResult) ElapsedLabel() string {
	return r.Elapsed.Round(time.Millisecond).String()
}
