package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickroom/internal/domain/entity"
	"quickroom/pkg/errors"
)

func newAppointmentFixture() (*AppointmentUseCase, *fakeAppointmentRepo, *fakeSecurityRepo, *recordingNotifier, *recordingBus) {
	apptRepo := newFakeAppointmentRepo()
	listingRepo := newFakeListingRepo(&entity.Listing{ID: "listing-1", OwnerID: "alice", Title: "Sunny flat"})
	securityRepo := &fakeSecurityRepo{}
	notifier := &recordingNotifier{}
	bus := &recordingBus{}

	uc := NewAppointmentUseCase(apptRepo, listingRepo, securityRepo, notifier, bus)
	return uc, apptRepo, securityRepo, notifier, bus
}

func pendingAppointment(repo *fakeAppointmentRepo) string {
	return repo.seed(entity.Appointment{
		ListingID:   "listing-1",
		OwnerID:     "alice",
		RequesterID: "bob",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Status:      entity.AppointmentPending,
	})
}

func TestRequestCreatesPendingAppointmentAndNotifiesOwner(t *testing.T) {
	uc, _, _, notifier, _ := newAppointmentFixture()

	appt, err := uc.Request(context.Background(), "bob", RequestAppointmentInput{
		ListingID:   "listing-1",
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Notes:       "after work if possible",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentPending, appt.Status)
	assert.Equal(t, "alice", appt.OwnerID)
	assert.Equal(t, "bob", appt.RequesterID)

	calls := notifier.callsFor("alice")
	require.Len(t, calls, 1)
	assert.Equal(t, "appointment", calls[0].Category)
}

func TestRequestRejectsPastTimeBeforeAnyWrite(t *testing.T) {
	uc, repo, _, notifier, _ := newAppointmentFixture()

	_, err := uc.Request(context.Background(), "bob", RequestAppointmentInput{
		ListingID:   "listing-1",
		ScheduledAt: time.Now().Add(-time.Hour),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
	assert.Empty(t, repo.appointments)
	assert.Empty(t, notifier.calls)
}

func TestRequestRejectsOwnListing(t *testing.T) {
	uc, repo, _, _, _ := newAppointmentFixture()

	_, err := uc.Request(context.Background(), "alice", RequestAppointmentInput{
		ListingID:   "listing-1",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "SELF_REFERENCE"))
	assert.Empty(t, repo.appointments)
}

func TestOwnerConfirmsPendingAppointment(t *testing.T) {
	uc, repo, _, notifier, _ := newAppointmentFixture()
	id := pendingAppointment(repo)

	updated, err := uc.Transition(context.Background(), "alice", id, entity.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentConfirmed, updated.Status)

	// The requester hears about the confirmation.
	calls := notifier.callsFor("bob")
	require.Len(t, calls, 1)
}

func TestRequesterCannotConfirm(t *testing.T) {
	uc, repo, securityRepo, _, _ := newAppointmentFixture()
	id := pendingAppointment(repo)

	_, err := uc.Transition(context.Background(), "bob", id, entity.AppointmentConfirmed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN_TRANSITION"))
	assert.Equal(t, 1, securityRepo.count())

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentPending, stored.EffectiveStatus())
}

func TestRequesterCanCancelPendingAppointment(t *testing.T) {
	uc, repo, _, _, _ := newAppointmentFixture()
	id := pendingAppointment(repo)

	updated, err := uc.Transition(context.Background(), "bob", id, entity.AppointmentCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentCancelled, updated.Status)
}

func TestStrangerIsRejectedAndAudited(t *testing.T) {
	uc, repo, securityRepo, _, _ := newAppointmentFixture()
	id := pendingAppointment(repo)

	_, err := uc.Transition(context.Background(), "mallory", id, entity.AppointmentCancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
	assert.Equal(t, 1, securityRepo.count())
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	uc, repo, _, _, _ := newAppointmentFixture()

	for _, terminal := range []string{entity.AppointmentCancelled, entity.AppointmentCompleted} {
		id := repo.seed(entity.Appointment{
			ListingID:   "listing-1",
			OwnerID:     "alice",
			RequesterID: "bob",
			Status:      terminal,
		})

		_, err := uc.Transition(context.Background(), "alice", id, entity.AppointmentConfirmed)
		require.Error(t, err)
		assert.True(t, errors.Is(err, "FORBIDDEN_TRANSITION"))

		stored, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, terminal, stored.Status)
	}
}

func TestOwnerCannotCancelAfterConfirming(t *testing.T) {
	uc, repo, _, _, _ := newAppointmentFixture()
	id := repo.seed(entity.Appointment{
		ListingID:   "listing-1",
		OwnerID:     "alice",
		RequesterID: "bob",
		Status:      entity.AppointmentConfirmed,
	})

	_, err := uc.Transition(context.Background(), "alice", id, entity.AppointmentCancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN_TRANSITION"))
}

func TestMissingStatusIsTreatedAsPending(t *testing.T) {
	uc, repo, _, _, _ := newAppointmentFixture()
	id := repo.seed(entity.Appointment{
		ListingID:   "listing-1",
		OwnerID:     "alice",
		RequesterID: "bob",
		Status:      "",
	})

	updated, err := uc.Transition(context.Background(), "alice", id, entity.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentConfirmed, updated.Status)
}

func TestSilentlyDroppedStatusWriteFailsVerification(t *testing.T) {
	uc, repo, _, notifier, _ := newAppointmentFixture()
	id := pendingAppointment(repo)
	repo.silentDrop = true

	_, err := uc.Transition(context.Background(), "alice", id, entity.AppointmentConfirmed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "PERSISTENCE_VERIFICATION_FAILED"))
	assert.Empty(t, notifier.calls)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentPending, stored.EffectiveStatus())
}

func TestFullLifecycleRequestConfirmThenCompleteStaysRoleScoped(t *testing.T) {
	uc, repo, _, _, _ := newAppointmentFixture()
	ctx := context.Background()

	appt, err := uc.Request(ctx, "bob", RequestAppointmentInput{
		ListingID:   "listing-1",
		ScheduledAt: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	confirmed, err := uc.Transition(ctx, "alice", appt.ID, entity.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentConfirmed, confirmed.Status)

	// The requester cannot declare the viewing completed.
	_, err = uc.Transition(ctx, "bob", appt.ID, entity.AppointmentCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN_TRANSITION"))

	stored, err := repo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentConfirmed, stored.Status)

	completed, err := uc.Transition(ctx, "alice", appt.ID, entity.AppointmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentCompleted, completed.Status)
}

func TestTransitionRejectsUnknownTarget(t *testing.T) {
	uc, repo, _, _, _ := newAppointmentFixture()
	id := pendingAppointment(repo)

	_, err := uc.Transition(context.Background(), "alice", id, "archived")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestGetByIDScopedToParticipants(t *testing.T) {
	uc, repo, _, _, _ := newAppointmentFixture()
	id := pendingAppointment(repo)
	ctx := context.Background()

	_, err := uc.GetByID(ctx, "alice", id)
	assert.NoError(t, err)
	_, err = uc.GetByID(ctx, "bob", id)
	assert.NoError(t, err)

	_, err = uc.GetByID(ctx, "mallory", id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}
