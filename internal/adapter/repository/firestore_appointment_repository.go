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

type firestoreAppointmentRepository struct {
	client *firestore.Client
}

func NewFirestoreAppointmentRepository(client *firestore.Client) repository.AppointmentRepository {
	return &firestoreAppointmentRepository{
		client: client,
	}
}

func (r *firestoreAppointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}

	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.client.Collection("viewing_appointments").Doc(appointment.ID).Set(ctx, appointment)
	if err != nil {
		return errors.Internal("Failed to create appointment", err)
	}

	return nil
}

func (r *firestoreAppointmentRepository) GetByID(ctx context.Context, id string) (*entity.Appointment, error) {
	doc, err := r.client.Collection("viewing_appointments").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Appointment", err)
		}
		return nil, errors.Internal("Failed to get appointment", err)
	}

	var appointment entity.Appointment
	if err := doc.DataTo(&appointment); err != nil {
		return nil, errors.Internal("Failed to parse appointment data", err)
	}

	return &appointment, nil
}

// UpdateStatusScoped runs the write in a transaction and applies it only
// when the actor is the row's owner or requester. When the filter does not
// match, the transaction commits without a write and no error is returned;
// the row-level policy of the store behaves the same way, which is why
// callers read the row back instead of trusting this call.
func (r *firestoreAppointmentRepository) UpdateStatusScoped(ctx context.Context, id, actorID, newStatus string, updatedAt time.Time) error {
	docRef := r.client.Collection("viewing_appointments").Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil // zero rows matched
			}
			return err
		}

		var appointment entity.Appointment
		if err := doc.DataTo(&appointment); err != nil {
			return err
		}

		if appointment.OwnerID != actorID && appointment.RequesterID != actorID {
			return nil // filtered out, zero rows affected
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "status", Value: newStatus},
			{Path: "updatedAt", Value: updatedAt},
		})
	})
	if err != nil {
		return errors.Internal("Failed to update appointment status", err)
	}

	return nil
}

func (r *firestoreAppointmentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Appointment, int64, error) {
	// A user sees appointments in either role. Firestore has no OR filter
	// across fields in this client version, so run both queries and merge.
	owned, err := r.queryByField(ctx, "ownerId", userID)
	if err != nil {
		return nil, 0, err
	}
	requested, err := r.queryByField(ctx, "requesterId", userID)
	if err != nil {
		return nil, 0, err
	}

	merged := append(owned, requested...)
	total := int64(len(merged))

	if offset > 0 {
		if offset >= len(merged) {
			return nil, total, nil
		}
		merged = merged[offset:]
	}
	if limit > 0 && limit < len(merged) {
		merged = merged[:limit]
	}

	return merged, total, nil
}

func (r *firestoreAppointmentRepository) queryByField(ctx context.Context, field, value string) ([]*entity.Appointment, error) {
	iter := r.client.Collection("viewing_appointments").
		Where(field, "==", value).
		OrderBy("scheduledAt", firestore.Desc).
		Documents(ctx)

	var appointments []*entity.Appointment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate appointments", err)
		}

		var appointment entity.Appointment
		if err := doc.DataTo(&appointment); err != nil {
			return nil, errors.Internal("Failed to parse appointment data", err)
		}
		appointments = append(appointments, &appointment)
	}

	return appointments, nil
}
