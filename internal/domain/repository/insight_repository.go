package repository

import "context"

// InsightRepository é o port para o modelo de linguagem.
// Implementações devem classificar falhas com os tipos de erro de internal/shared/types.
type InsightRepository interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}
