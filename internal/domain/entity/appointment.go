package entity

import "time"

// Appointment statuses. An empty status on a stored row is read as pending.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Appointment is a scheduled property-viewing request. Both the listing
// owner and the requester hold read and limited-write access; which
// transitions each may perform is enforced by the appointment use case.
type Appointment struct {
	ID          string    `json:"id" firestore:"id"`
	ListingID   string    `json:"listing_id" firestore:"listingId"`
	OwnerID     string    `json:"owner_id" firestore:"ownerId"`
	RequesterID string    `json:"requester_id" firestore:"requesterId"`
	ScheduledAt time.Time `json:"scheduled_at" firestore:"scheduledAt"`
	Notes       string    `json:"notes,omitempty" firestore:"notes,omitempty"`
	Status      string    `json:"status" firestore:"status"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// EffectiveStatus treats a missing status as pending.
func (a *Appointment) EffectiveStatus() string {
	if a.Status == "" {
		return AppointmentPending
	}
	return a.Status
}

// Terminal reports whether no further transitions are allowed.
func (a *Appointment) Terminal() bool {
	s := a.EffectiveStatus()
	return s == AppointmentCancelled || s == AppointmentCompleted
}
