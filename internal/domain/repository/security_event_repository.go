package repository

import (
	"context"

	"quickroom/internal/domain/entity"
)

type SecurityEventRepository interface {
	Create(ctx context.Context, event *entity.SecurityEvent) error
}
