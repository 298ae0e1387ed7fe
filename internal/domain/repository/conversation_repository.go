package repository

import (
	"context"

	"quickroom/internal/domain/entity"
)

// ConversationRepository is the storage surface for conversations, their
// participant rows and their messages. The backing store guarantees
// atomicity of single-row writes only; multi-row consistency (create
// conversation plus two participants) is the conversation use case's job.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	Update(ctx context.Context, conversation *entity.Conversation) error
	Delete(ctx context.Context, id string) error

	// Participant rows. GetParticipant returns NOT_FOUND when the row was
	// never persisted, which is how a silently dropped insert is detected.
	AddParticipant(ctx context.Context, participant *entity.Participant) error
	GetParticipant(ctx context.Context, conversationID, userID string) (*entity.Participant, error)
	ListParticipants(ctx context.Context, conversationID string) ([]*entity.Participant, error)
	ListParticipationsByUser(ctx context.Context, userID string) ([]*entity.Participant, error)
	UpdateParticipant(ctx context.Context, participant *entity.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, userID string) error

	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)
}
