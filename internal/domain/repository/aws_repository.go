package repository

import (
	"context"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
)

// AWSRepository defines the interface for AWS API interactions.
type AWSRepository interface {
	// GetAccountID retorna a conta das credenciais configuradas (STS).
	GetAccountID(ctx context.Context) (string, error)

	// ListLogGroups retorna a primeira página de log groups, nunca mais que limit itens.
	ListLogGroups(ctx context.Context, limit int, prefix string) ([]entity.LogGroupDescriptor, error)

	// DescribeSourceResource identifica o recurso que escreve no log group.
	// Retorna nil, nil quando o nome não corresponde a um recurso conhecido.
	DescribeSourceResource(ctx context.Context, logGroupName string) (*entity.SourceResource, error)

	// UploadReport envia um relatório exportado para o S3 e retorna a URI s3://.
	UploadReport(ctx context.Context, bucket, key, filePath string) (string, error)
}
