package repository

import (
	"context"
	"time"

	"quickroom/internal/domain/entity"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	GetByID(ctx context.Context, id string) (*entity.Appointment, error)

	// UpdateStatusScoped applies the status change only when actorID is the
	// appointment's owner or requester, mirroring a row-level write filter.
	// A non-matching filter is NOT an error: the call reports success while
	// affecting zero rows, so callers must verify by reading the row back.
	UpdateStatusScoped(ctx context.Context, id, actorID, status string, updatedAt time.Time) error

	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Appointment, int64, error)
}
