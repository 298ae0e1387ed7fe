package usecase

import (
	"context"
	"time"

	"quickroom/internal/domain/entity"
	"quickroom/internal/domain/repository"
	"quickroom/internal/infrastructure/ratelimit"
	"quickroom/pkg/errors"
	"quickroom/pkg/logger"
)

// ConversationUseCase establishes two-party conversations about a listing.
// The store offers no multi-row transactions, so the create path performs
// ordered inserts with read-back verification and compensating deletes: a
// partial failure must never leave an orphaned conversation or a
// single-sided participant list behind.
type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	listingRepo      repository.ListingRepository
	userRepo         repository.UserRepository
	notifier         Notifier
	bus              ChannelBus
	rateLimiter      *ratelimit.RateLimiter
}

func NewConversationUseCase(
	conversationRepo repository.ConversationRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	bus ChannelBus,
) *ConversationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ConversationUseCase{
		conversationRepo: conversationRepo,
		listingRepo:      listingRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		bus:              bus,
		rateLimiter:      rateLimiter,
	}
}

type StartConversationInput struct {
	CounterpartyID string
	ListingID      string
}

type SendMessageInput struct {
	ConversationID string
	Content        string
	FileURL        string
	Type           string // "text", "image", "file"
}

type ConversationResponse struct {
	*entity.Conversation
	Listing   *entity.Listing `json:"listing,omitempty"`
	OtherUser *entity.User    `json:"other_user,omitempty"`
}

// FindOrCreate opens the conversation for (user, counterparty, listing),
// reusing an existing one when the triple already has a thread. Exactly one
// conversation id is returned either way, and the counterparty gets one
// best-effort notification.
func (uc *ConversationUseCase) FindOrCreate(ctx context.Context, userID string, input StartConversationInput) (*ConversationResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "start_conversation")
	if !allowed {
		logger.Warn("FindOrCreate rate limited: user %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before starting another conversation", waitTime)
	}

	if userID == input.CounterpartyID {
		return nil, errors.SelfReference("You cannot start a conversation with yourself")
	}

	counterparty, err := uc.userRepo.GetByID(ctx, input.CounterpartyID)
	if err != nil {
		return nil, errors.NotFound("Counterparty", err)
	}

	var listing *entity.Listing
	if input.ListingID != "" {
		listing, err = uc.listingRepo.GetByID(ctx, input.ListingID)
		if err != nil {
			return nil, errors.NotFound("Listing", err)
		}
	}

	conversation, err := uc.findExistingConversation(ctx, userID, input.CounterpartyID, input.ListingID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	if conversation == nil {
		conversation, err = uc.createConversation(ctx, userID, input.CounterpartyID, input.ListingID)
		if err != nil {
			return nil, err
		}
	}

	uc.notifier.Notify(ctx, input.CounterpartyID,
		"New conversation",
		"Someone wants to talk to you about a listing",
		"chat",
		"/conversations/"+conversation.ID)

	uc.bus.SendToUser(input.CounterpartyID, "conversation_started", conversation)

	return &ConversationResponse{
		Conversation: conversation,
		Listing:      listing,
		OtherUser:    counterparty,
	}, nil
}

// findExistingConversation walks the caller's participations and returns
// the first conversation whose participant set contains the counterparty
// and whose listing id matches. Selection is unordered; the store enforces
// no uniqueness on (pair, listing), so concurrent creates can still race
// into duplicates (documented open question, not defended against here).
func (uc *ConversationUseCase) findExistingConversation(ctx context.Context, userID, counterpartyID, listingID string) (*entity.Conversation, error) {
	participations, err := uc.conversationRepo.ListParticipationsByUser(ctx, userID)
	if err != nil {
		return nil, errors.Internal("Failed to list conversations for user", err)
	}

	for _, participation := range participations {
		participants, err := uc.conversationRepo.ListParticipants(ctx, participation.ConversationID)
		if err != nil {
			return nil, errors.Internal("Failed to list participants", err)
		}

		if !containsParticipant(participants, counterpartyID) {
			continue
		}

		conversation, err := uc.conversationRepo.GetByID(ctx, participation.ConversationID)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				continue
			}
			return nil, err
		}

		if conversation.ListingID == listingID {
			return conversation, nil
		}
	}

	return nil, errors.NotFound("Conversation", nil)
}

// createConversation performs the ordered insert sequence. Every write is
// read back before the next one: the store can accept a write and then drop
// it under row-level policy, and "no error" is not "persisted". On failure
// the already-written rows are deleted in reverse order; compensation
// errors are logged but never surface over the primary failure.
func (uc *ConversationUseCase) createConversation(ctx context.Context, userID, counterpartyID, listingID string) (*entity.Conversation, error) {
	conversation := &entity.Conversation{
		ListingID:     listingID,
		LastMessageAt: time.Now(),
	}

	if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, errors.ConversationSetup(err)
	}

	if _, err := uc.conversationRepo.GetByID(ctx, conversation.ID); err != nil {
		uc.compensate(ctx, conversation.ID)
		return nil, errors.ConversationSetup(err)
	}

	if err := uc.addParticipantVerified(ctx, conversation.ID, userID); err != nil {
		uc.compensate(ctx, conversation.ID)
		return nil, errors.ConversationSetup(err)
	}

	if err := uc.addParticipantVerified(ctx, conversation.ID, counterpartyID); err != nil {
		uc.compensate(ctx, conversation.ID, userID)
		return nil, errors.ConversationSetup(err)
	}

	return conversation, nil
}

func (uc *ConversationUseCase) addParticipantVerified(ctx context.Context, conversationID, userID string) error {
	participant := &entity.Participant{
		ConversationID: conversationID,
		UserID:         userID,
		JoinedAt:       time.Now(),
	}

	if err := uc.conversationRepo.AddParticipant(ctx, participant); err != nil {
		return err
	}

	if _, err := uc.conversationRepo.GetParticipant(ctx, conversationID, userID); err != nil {
		return err
	}

	return nil
}

// compensate deletes the given participant rows and then the conversation
// itself. It runs to completion even when individual deletes fail, so an
// abandoned request cannot leave partial state behind.
func (uc *ConversationUseCase) compensate(ctx context.Context, conversationID string, participantIDs ...string) {
	for _, participantID := range participantIDs {
		if err := uc.conversationRepo.RemoveParticipant(ctx, conversationID, participantID); err != nil {
			logger.Error("Compensation failed removing participant %s from conversation %s: %v", participantID, conversationID, err)
		}
	}

	if err := uc.conversationRepo.Delete(ctx, conversationID); err != nil {
		logger.Error("Compensation failed deleting conversation %s: %v", conversationID, err)
	}
}

func (uc *ConversationUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.conversationRepo.GetParticipant(ctx, input.ConversationID, userID); err != nil {
		return nil, errors.Forbidden("You are not a participant in this conversation", err)
	}

	messageType := input.Type
	if messageType == "" {
		messageType = "text"
	}

	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       userID,
		Content:        input.Content,
		FileURL:        input.FileURL,
		Type:           messageType,
	}

	if err := uc.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	conversation.LastMessage = input.Content
	conversation.LastMessageAt = message.CreatedAt
	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		logger.Warn("Failed to update conversation %s after message: %v", conversation.ID, err)
	}

	uc.bus.PublishExcept(input.ConversationID, userID, "new_message", message)

	participants, err := uc.conversationRepo.ListParticipants(ctx, input.ConversationID)
	if err == nil {
		for _, participant := range participants {
			if participant.UserID != userID {
				uc.bus.SendToUser(participant.UserID, "conversation_updated", conversation)
			}
		}
	}

	return message, nil
}

func (uc *ConversationUseCase) ListForUser(ctx context.Context, userID string) ([]*ConversationResponse, error) {
	participations, err := uc.conversationRepo.ListParticipationsByUser(ctx, userID)
	if err != nil {
		return nil, errors.Internal("Failed to list conversations for user", err)
	}

	var responses []*ConversationResponse
	for _, participation := range participations {
		conversation, err := uc.conversationRepo.GetByID(ctx, participation.ConversationID)
		if err != nil {
			logger.Warn("Skipping conversation %s: %v", participation.ConversationID, err)
			continue
		}

		resp := &ConversationResponse{Conversation: conversation}

		if conversation.ListingID != "" {
			if listing, err := uc.listingRepo.GetByID(ctx, conversation.ListingID); err == nil {
				resp.Listing = listing
			}
		}

		participants, err := uc.conversationRepo.ListParticipants(ctx, conversation.ID)
		if err == nil {
			for _, participant := range participants {
				if participant.UserID != userID {
					if other, err := uc.userRepo.GetByID(ctx, participant.UserID); err == nil {
						resp.OtherUser = other
					}
					break
				}
			}
		}

		responses = append(responses, resp)
	}

	return responses, nil
}

func (uc *ConversationUseCase) ListMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.conversationRepo.GetParticipant(ctx, conversationID, userID); err != nil {
		return nil, 0, errors.Forbidden("You are not a participant in this conversation", err)
	}

	return uc.conversationRepo.ListMessages(ctx, conversationID, limit, offset)
}

func (uc *ConversationUseCase) MarkRead(ctx context.Context, userID, conversationID string) error {
	participant, err := uc.conversationRepo.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		return errors.Forbidden("You are not a participant in this conversation", err)
	}

	participant.LastReadAt = time.Now()
	return uc.conversationRepo.UpdateParticipant(ctx, participant)
}

func containsParticipant(participants []*entity.Participant, userID string) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
