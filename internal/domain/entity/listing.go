package entity

import "time"

// Listing is read-only context for this service; listing CRUD lives in the
// marketplace surface, not here.
type Listing struct {
	ID        string    `json:"id" firestore:"id"`
	OwnerID   string    `json:"owner_id" firestore:"ownerId"`
	Title     string    `json:"title" firestore:"title"`
	Address   string    `json:"address,omitempty" firestore:"address,omitempty"`
	Price     float64   `json:"price" firestore:"price"`
	Status    string    `json:"status" firestore:"status"` // "active", "paused", "closed"
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
