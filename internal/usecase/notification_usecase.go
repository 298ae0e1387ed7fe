package usecase

import (
	"context"

	"quickroom/internal/domain/entity"
	"quickroom/internal/domain/repository"
	"quickroom/pkg/logger"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	bus              ChannelBus
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository, bus ChannelBus) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		bus:              bus,
	}
}

// Notify writes one notification record and pushes it to the recipient if
// they are connected. No read-back, no retry: a dropped notification is a
// degraded-but-acceptable outcome, so failures are logged and swallowed.
func (uc *NotificationUseCase) Notify(ctx context.Context, userID, title, body, category, link string) {
	notification := &entity.Notification{
		UserID:   userID,
		Title:    title,
		Body:     body,
		Category: category,
		Link:     link,
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		logger.Warn("Notification dropped for user %s (%s): %v", userID, category, err)
		return
	}

	if uc.bus != nil {
		uc.bus.SendToUser(userID, "notification", notification)
	}
}

func (uc *NotificationUseCase) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	return uc.notificationRepo.ListByUser(ctx, userID, limit, offset)
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	return uc.notificationRepo.MarkRead(ctx, notificationID, userID)
}
