package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"quickroom/internal/domain/entity"
	"quickroom/internal/domain/repository"
	"quickroom/pkg/errors"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

// Participant rows live in a top-level collection keyed by
// "<conversationId>_<userId>" so a just-written row can be read back by key.
func participantDocID(conversationID, userID string) string {
	return conversationID + "_" + userID
}

func (r *firestoreConversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}

	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	_, err := r.client.Collection("conversations").Doc(conversation.ID).Set(ctx, conversation)
	if err != nil {
		return errors.Internal("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

func (r *firestoreConversationRepository) Update(ctx context.Context, conversation *entity.Conversation) error {
	conversation.UpdatedAt = time.Now()

	_, err := r.client.Collection("conversations").Doc(conversation.ID).Set(ctx, conversation)
	if err != nil {
		return errors.Internal("Failed to update conversation", err)
	}

	return nil
}

func (r *firestoreConversationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("conversations").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete conversation", err)
	}

	return nil
}

func (r *firestoreConversationRepository) AddParticipant(ctx context.Context, participant *entity.Participant) error {
	if participant.JoinedAt.IsZero() {
		participant.JoinedAt = time.Now()
	}

	docID := participantDocID(participant.ConversationID, participant.UserID)
	_, err := r.client.Collection("conversation_participants").Doc(docID).Set(ctx, participant)
	if err != nil {
		return errors.Internal("Failed to add participant", err)
	}

	return nil
}

func (r *firestoreConversationRepository) GetParticipant(ctx context.Context, conversationID, userID string) (*entity.Participant, error) {
	docID := participantDocID(conversationID, userID)
	doc, err := r.client.Collection("conversation_participants").Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Participant", err)
		}
		return nil, errors.Internal("Failed to get participant", err)
	}

	var participant entity.Participant
	if err := doc.DataTo(&participant); err != nil {
		return nil, errors.Internal("Failed to parse participant data", err)
	}

	return &participant, nil
}

func (r *firestoreConversationRepository) ListParticipants(ctx context.Context, conversationID string) ([]*entity.Participant, error) {
	iter := r.client.Collection("conversation_participants").
		Where("conversationId", "==", conversationID).
		Documents(ctx)

	var participants []*entity.Participant
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate participants", err)
		}

		var participant entity.Participant
		if err := doc.DataTo(&participant); err != nil {
			return nil, errors.Internal("Failed to parse participant data", err)
		}
		participants = append(participants, &participant)
	}

	return participants, nil
}

func (r *firestoreConversationRepository) ListParticipationsByUser(ctx context.Context, userID string) ([]*entity.Participant, error) {
	iter := r.client.Collection("conversation_participants").
		Where("userId", "==", userID).
		Documents(ctx)

	var participations []*entity.Participant
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate participations", err)
		}

		var participant entity.Participant
		if err := doc.DataTo(&participant); err != nil {
			return nil, errors.Internal("Failed to parse participant data", err)
		}
		participations = append(participations, &participant)
	}

	return participations, nil
}

func (r *firestoreConversationRepository) UpdateParticipant(ctx context.Context, participant *entity.Participant) error {
	docID := participantDocID(participant.ConversationID, participant.UserID)
	_, err := r.client.Collection("conversation_participants").Doc(docID).Set(ctx, participant)
	if err != nil {
		return errors.Internal("Failed to update participant", err)
	}

	return nil
}

func (r *firestoreConversationRepository) RemoveParticipant(ctx context.Context, conversationID, userID string) error {
	docID := participantDocID(conversationID, userID)
	_, err := r.client.Collection("conversation_participants").Doc(docID).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to remove participant", err)
	}

	return nil
}

func (r *firestoreConversationRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	message.CreatedAt = time.Now()

	_, err := r.client.Collection("conversations").Doc(message.ConversationID).
		Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreConversationRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}
