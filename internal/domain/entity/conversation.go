package entity

import "time"

// Conversation is a two-party chat thread, optionally scoped to one listing.
// The store does not enforce uniqueness of (participant pair, listing); the
// conversation use case searches before creating.
type Conversation struct {
	ID            string    `json:"id" firestore:"id"`
	ListingID     string    `json:"listing_id,omitempty" firestore:"listingId,omitempty"`
	LastMessage   string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Participant links a user to a conversation. Exactly two exist per
// conversation; rows are written and compensated by the conversation use
// case and never orphaned.
type Participant struct {
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	UserID         string    `json:"user_id" firestore:"userId"`
	JoinedAt       time.Time `json:"joined_at" firestore:"joinedAt"`
	LastReadAt     time.Time `json:"last_read_at" firestore:"lastReadAt"`
}
