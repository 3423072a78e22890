package entity

import (
	"strconv"
	"time"
)

// LogGroupDescriptor representa um log group do CloudWatch retornado pelo Lister.
// É somente leitura depois de produzido.
type LogGroupDescriptor struct {
	Name          string          `json:"name"`
	Region        string          `json:"region"`
	ARN           string          `json:"arn,omitempty"`
	RetentionDays int             `json:"retention_days"` // 0 => Never expire
	StoredBytes   int64           `json:"stored_bytes"`
	CreationTime  time.Time       `json:"creation_time,omitempty"`
	Resource      *SourceResource `json:"resource,omitempty"`
}

// StoredGB retorna o volume armazenado em GiB.
func (d LogGroupDescriptor) StoredGB() float64 {
	return float64(d.StoredBytes) / (1024.0 * 1024.0 * 1024.0)
}

// RetentionLabel descreve a retenção em texto.
func (d LogGroupDescriptor) RetentionLabel() string {
	if d.RetentionDays <= 0 {
		return "never expire"
	}
	if d.RetentionDays == 1 {
		return "1 day"
	}
	return strconv.Itoa(d.RetentionDays) + " days"
}

// SourceResource descreve o recurso AWS que emite os logs do grupo
// (ex.: a função Lambda de /aws/lambda/<nome>).
type SourceResource struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
