package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"quickroom/internal/domain/entity"
	"quickroom/internal/domain/repository"
	"quickroom/pkg/errors"
)

type firestoreSecurityEventRepository struct {
	client *firestore.Client
}

func NewFirestoreSecurityEventRepository(client *firestore.Client) repository.SecurityEventRepository {
	return &firestoreSecurityEventRepository{
		client: client,
	}
}

func (r *firestoreSecurityEventRepository) Create(ctx context.Context, event *entity.SecurityEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	event.CreatedAt = time.Now()

	_, err := r.client.Collection("security_events").Doc(event.ID).Set(ctx, event)
	if err != nil {
		return errors.Internal("Failed to record security event", err)
	}

	return nil
}
