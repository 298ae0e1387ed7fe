package usecase

import (
	"context"

	"quickroom/internal/infrastructure/realtime"
)

// ChannelBus is the realtime collaborator: durable event delivery to
// conversation topics plus the ephemeral presence layer. The production
// implementation is realtime.Manager; tests swap in a recording fake.
type ChannelBus interface {
	Publish(topic, eventType string, data interface{})
	PublishExcept(topic, excludeUserID, eventType string, data interface{})
	SendToUser(userID, eventType string, data interface{})
	TrackPresence(topic string, state realtime.PresenceState)
}

// Notifier creates user-facing notification records. Implementations are
// best-effort: they log failures and never return them, so a dropped
// notification can never roll back the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body, category, link string)
}
