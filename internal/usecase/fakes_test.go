package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quickroom/internal/domain/entity"
	"quickroom/internal/infrastructure/realtime"
	"quickroom/pkg/errors"
)

// In-memory repository fakes with failure injection. Flags simulate the two
// store failure modes the use cases defend against: hard errors and writes
// that report success without persisting anything.

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	participants  map[string]*entity.Participant // key convID_userID
	messages      map[string][]*entity.Message

	failCreate         bool
	dropCreate         bool            // Create succeeds but persists nothing
	failAddParticipant map[string]bool // by user id
	dropAddParticipant map[string]bool // AddParticipant succeeds, row never lands
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations:      make(map[string]*entity.Conversation),
		participants:       make(map[string]*entity.Participant),
		messages:           make(map[string][]*entity.Message),
		failAddParticipant: make(map[string]bool),
		dropAddParticipant: make(map[string]bool),
	}
}

func participantKey(conversationID, userID string) string {
	return conversationID + "_" + userID
}

func (r *fakeConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.Internal("store rejected write", nil)
	}
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if r.dropCreate {
		return nil
	}
	stored := *c
	r.conversations[c.ID] = &stored
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[c.ID]; !ok {
		return errors.NotFound("Conversation", nil)
	}
	stored := *c
	r.conversations[c.ID] = &stored
	return nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
	return nil
}

func (r *fakeConversationRepo) AddParticipant(ctx context.Context, p *entity.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAddParticipant[p.UserID] {
		return errors.Internal("store rejected write", nil)
	}
	if r.dropAddParticipant[p.UserID] {
		return nil
	}
	stored := *p
	r.participants[participantKey(p.ConversationID, p.UserID)] = &stored
	return nil
}

func (r *fakeConversationRepo) GetParticipant(ctx context.Context, conversationID, userID string) (*entity.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantKey(conversationID, userID)]
	if !ok {
		return nil, errors.NotFound("Participant", nil)
	}
	copied := *p
	return &copied, nil
}

func (r *fakeConversationRepo) ListParticipants(ctx context.Context, conversationID string) ([]*entity.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Participant
	for _, p := range r.participants {
		if p.ConversationID == conversationID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) ListParticipationsByUser(ctx context.Context, userID string) ([]*entity.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Participant
	for _, p := range r.participants {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) UpdateParticipant(ctx context.Context, p *entity.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participantKey(p.ConversationID, p.UserID)
	if _, ok := r.participants[key]; !ok {
		return errors.NotFound("Participant", nil)
	}
	stored := *p
	r.participants[key] = &stored
	return nil
}

func (r *fakeConversationRepo) RemoveParticipant(ctx context.Context, conversationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, participantKey(conversationID, userID))
	return nil
}

func (r *fakeConversationRepo) CreateMessage(ctx context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.New().String()
	m.CreatedAt = time.Now()
	stored := *m
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], &stored)
	return nil
}

func (r *fakeConversationRepo) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	return msgs, int64(len(msgs)), nil
}

func (r *fakeConversationRepo) conversationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conversations)
}

func (r *fakeConversationRepo) participantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[string]*entity.Appointment

	silentDrop bool // UpdateStatusScoped reports success, writes nothing
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[string]*entity.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	r.appointments[a.ID] = &stored
	return nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id string) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, errors.NotFound("Appointment", nil)
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAppointmentRepo) UpdateStatusScoped(ctx context.Context, id, actorID, status string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil
	}
	if a.OwnerID != actorID && a.RequesterID != actorID {
		return nil
	}
	if r.silentDrop {
		return nil
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	return nil
}

func (r *fakeAppointmentRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Appointment
	for _, a := range r.appointments {
		if a.OwnerID == userID || a.RequesterID == userID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAppointmentRepo) seed(a entity.Appointment) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	r.appointments[a.ID] = &a
	return a.ID
}

type fakeListingRepo struct {
	listings map[string]*entity.Listing
}

func newFakeListingRepo(listings ...*entity.Listing) *fakeListingRepo {
	r := &fakeListingRepo{listings: make(map[string]*entity.Listing)}
	for _, l := range listings {
		r.listings[l.ID] = l
	}
	return r
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return l, nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, id := range ids {
		r.users[id] = &entity.User{ID: id, Username: "user-" + id}
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return u, nil
}

type fakeSecurityRepo struct {
	mu     sync.Mutex
	events []*entity.SecurityEvent
}

func (r *fakeSecurityRepo) Create(ctx context.Context, e *entity.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *fakeSecurityRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	failCreate    bool
	notifications []*entity.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.Internal("store rejected write", nil)
	}
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

type busEvent struct {
	Topic     string
	UserID    string
	EventType string
	Data      interface{}
}

// recordingBus captures every publish and presence update.
type recordingBus struct {
	mu       sync.Mutex
	events   []busEvent
	presence []struct {
		Topic string
		State realtime.PresenceState
	}
}

func (b *recordingBus) Publish(topic, eventType string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, busEvent{Topic: topic, EventType: eventType, Data: data})
}

func (b *recordingBus) PublishExcept(topic, excludeUserID, eventType string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, busEvent{Topic: topic, UserID: excludeUserID, EventType: eventType, Data: data})
}

func (b *recordingBus) SendToUser(userID, eventType string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, busEvent{UserID: userID, EventType: eventType, Data: data})
}

func (b *recordingBus) TrackPresence(topic string, state realtime.PresenceState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presence = append(b.presence, struct {
		Topic string
		State realtime.PresenceState
	}{topic, state})
}

func (b *recordingBus) presenceStates() []realtime.PresenceState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]realtime.PresenceState, 0, len(b.presence))
	for _, p := range b.presence {
		out = append(out, p.State)
	}
	return out
}

type notifyCall struct {
	UserID   string
	Title    string
	Category string
}

// recordingNotifier stands in for the notification dispatcher. It can be
// told to "fail", which for a best-effort notifier just means it records
// nothing, the same as a dropped write.
type recordingNotifier struct {
	mu    sync.Mutex
	fail  bool
	calls []notifyCall
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, title, body, category, link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return
	}
	n.calls = append(n.calls, notifyCall{UserID: userID, Title: title, Category: category})
}

func (n *recordingNotifier) callsFor(userID string) []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notifyCall
	for _, c := range n.calls {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}
