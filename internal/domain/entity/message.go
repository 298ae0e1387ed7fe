package entity

import "time"

type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	Content        string    `json:"content,omitempty" firestore:"content,omitempty"`
	FileURL        string    `json:"file_url,omitempty" firestore:"fileUrl,omitempty"`
	Type           string    `json:"type" firestore:"type"` // "text", "image", "file"
	Read           bool      `json:"read" firestore:"read"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}
