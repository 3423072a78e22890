package repository

import (
	"context"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
)

// NotifierRepository entrega uma notificação já formatada (uma requisição por chamada).
type NotifierRepository interface {
	Post(ctx context.Context, n entity.Notification) error
}
