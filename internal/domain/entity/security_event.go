package entity

import "time"

// SecurityEvent records a denied action for audit. Writing one is
// best-effort and never blocks the denial itself.
type SecurityEvent struct {
	ID         string    `json:"id" firestore:"id"`
	ActorID    string    `json:"actor_id" firestore:"actorId"`
	Action     string    `json:"action" firestore:"action"`
	ResourceID string    `json:"resource_id" firestore:"resourceId"`
	Detail     string    `json:"detail,omitempty" firestore:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}
