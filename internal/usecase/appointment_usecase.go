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

const (
	roleOwner     = "owner"
	roleRequester = "requester"
)

// Role-scoped status transitions. The owner who already confirmed cannot
// re-cancel; the requester keeps a cancellation exit from every
// non-terminal state. Terminal states have no entries.
var appointmentTransitions = map[string]map[string][]string{
	entity.AppointmentPending: {
		entity.AppointmentConfirmed: {roleOwner},
		entity.AppointmentCancelled: {roleOwner, roleRequester},
	},
	entity.AppointmentConfirmed: {
		entity.AppointmentCompleted: {roleOwner},
		entity.AppointmentCancelled: {roleRequester},
	},
}

// AppointmentUseCase drives the viewing-appointment lifecycle. Every status
// write is scoped by the actor's role and verified by reading the row back:
// the store can report success on a write its row-level policy silently
// discarded, so "no error" alone proves nothing.
type AppointmentUseCase struct {
	appointmentRepo repository.AppointmentRepository
	listingRepo     repository.ListingRepository
	securityRepo    repository.SecurityEventRepository
	notifier        Notifier
	bus             ChannelBus
	rateLimiter     *ratelimit.RateLimiter
}

func NewAppointmentUseCase(
	appointmentRepo repository.AppointmentRepository,
	listingRepo repository.ListingRepository,
	securityRepo repository.SecurityEventRepository,
	notifier Notifier,
	bus ChannelBus,
) *AppointmentUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &AppointmentUseCase{
		appointmentRepo: appointmentRepo,
		listingRepo:     listingRepo,
		securityRepo:    securityRepo,
		notifier:        notifier,
		bus:             bus,
		rateLimiter:     rateLimiter,
	}
}

type RequestAppointmentInput struct {
	ListingID   string
	ScheduledAt time.Time
	Notes       string
}

// Request books a viewing against a listing. The time must be strictly in
// the future, checked before any write happens.
func (uc *AppointmentUseCase) Request(ctx context.Context, requesterID string, input RequestAppointmentInput) (*entity.Appointment, error) {
	allowed, waitTime := uc.rateLimiter.Allow(requesterID, "request_appointment")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before requesting another viewing", waitTime)
	}

	if !input.ScheduledAt.After(time.Now()) {
		return nil, errors.BadRequest("Viewing time must be in the future", nil)
	}

	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, errors.NotFound("Listing", err)
	}

	if listing.OwnerID == requesterID {
		return nil, errors.SelfReference("You cannot book a viewing of your own listing")
	}

	appointment := &entity.Appointment{
		ListingID:   input.ListingID,
		OwnerID:     listing.OwnerID,
		RequesterID: requesterID,
		ScheduledAt: input.ScheduledAt,
		Notes:       input.Notes,
		Status:      entity.AppointmentPending,
	}

	if err := uc.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	// Confirm the row exists with a generated id before telling anyone.
	written, err := uc.appointmentRepo.GetByID(ctx, appointment.ID)
	if err != nil || written.ID == "" {
		return nil, errors.VerificationFailed("viewing request")
	}

	uc.notifier.Notify(ctx, listing.OwnerID,
		"New viewing request",
		"Someone requested a viewing of "+listing.Title,
		"appointment",
		"/appointments/"+written.ID)

	uc.bus.SendToUser(listing.OwnerID, "appointment_requested", written)

	return written, nil
}

// Transition applies one role-scoped status change. Authorization is
// enforced twice: rejected up front here, and again by the ownership filter
// on the write itself. The read-back afterwards is what decides success.
func (uc *AppointmentUseCase) Transition(ctx context.Context, actorID, appointmentID, targetStatus string) (*entity.Appointment, error) {
	switch targetStatus {
	case entity.AppointmentConfirmed, entity.AppointmentCancelled, entity.AppointmentCompleted:
	default:
		return nil, errors.BadRequest("Unknown appointment status", nil)
	}

	appointment, err := uc.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	isOwner := appointment.OwnerID == actorID
	isRequester := appointment.RequesterID == actorID

	if !isOwner && !isRequester {
		uc.recordSecurityEvent(ctx, actorID, appointmentID, targetStatus)
		return nil, errors.Unauthorized("You don't have access to this appointment", nil)
	}

	if isRequester && !isOwner && targetStatus != entity.AppointmentCancelled {
		uc.recordSecurityEvent(ctx, actorID, appointmentID, targetStatus)
		return nil, errors.ForbiddenTransition("Requesters may only cancel a viewing")
	}

	if !uc.transitionAllowed(appointment.EffectiveStatus(), targetStatus, isOwner, isRequester) {
		return nil, errors.ForbiddenTransition("Viewing cannot be moved to this status")
	}

	now := time.Now()
	if err := uc.appointmentRepo.UpdateStatusScoped(ctx, appointmentID, actorID, targetStatus, now); err != nil {
		return nil, err
	}

	// The write may have matched zero rows under row-level policy while
	// still reporting success. Only the read-back is trusted.
	updated, err := uc.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, errors.VerificationFailed("viewing")
	}
	if updated.EffectiveStatus() != targetStatus {
		return nil, errors.VerificationFailed("viewing")
	}

	uc.notifyCounterpart(ctx, updated, actorID, targetStatus)

	return updated, nil
}

func (uc *AppointmentUseCase) transitionAllowed(current, target string, isOwner, isRequester bool) bool {
	roles, exists := appointmentTransitions[current][target]
	if !exists {
		return false
	}

	for _, role := range roles {
		if (role == roleOwner && isOwner) || (role == roleRequester && isRequester) {
			return true
		}
	}
	return false
}

// recordSecurityEvent captures a denied attempt for audit. Best-effort:
// the denial stands whether or not the event row lands.
func (uc *AppointmentUseCase) recordSecurityEvent(ctx context.Context, actorID, appointmentID, targetStatus string) {
	logger.SecurityEvent(actorID, "appointment_transition_denied", appointmentID, "target="+targetStatus)

	event := &entity.SecurityEvent{
		ActorID:    actorID,
		Action:     "appointment_transition_denied",
		ResourceID: appointmentID,
		Detail:     "attempted status: " + targetStatus,
	}
	if err := uc.securityRepo.Create(ctx, event); err != nil {
		logger.Error("Failed to persist security event for actor %s: %v", actorID, err)
	}
}

func (uc *AppointmentUseCase) notifyCounterpart(ctx context.Context, appointment *entity.Appointment, actorID, targetStatus string) {
	recipient := appointment.RequesterID
	if actorID == appointment.RequesterID {
		recipient = appointment.OwnerID
	}

	uc.notifier.Notify(ctx, recipient,
		"Viewing "+targetStatus,
		"Your viewing appointment is now "+targetStatus,
		"appointment",
		"/appointments/"+appointment.ID)

	uc.bus.SendToUser(recipient, "appointment_updated", appointment)
}

func (uc *AppointmentUseCase) GetByID(ctx context.Context, userID, appointmentID string) (*entity.Appointment, error) {
	appointment, err := uc.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.OwnerID != userID && appointment.RequesterID != userID {
		return nil, errors.Unauthorized("You don't have access to this appointment", nil)
	}

	return appointment, nil
}

func (uc *AppointmentUseCase) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Appointment, int64, error) {
	return uc.appointmentRepo.ListByUser(ctx, userID, limit, offset)
}
