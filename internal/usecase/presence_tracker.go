package usecase

import (
	"sync"
	"time"

	"quickroom/internal/infrastructure/ratelimit"
	"quickroom/internal/infrastructure/realtime"
)

// PresenceTracker keeps ephemeral typing state per conversation. Nothing is
// persisted: state lives in the bus's presence map and in the expiry timers
// here. A typing flag that is never explicitly cleared expires on its own,
// so a client that disconnects mid-keystroke cannot leave a stuck indicator.
type PresenceTracker struct {
	bus         ChannelBus
	expiry      time.Duration
	rateLimiter *ratelimit.RateLimiter

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewPresenceTracker(bus ChannelBus, expiry time.Duration) *PresenceTracker {
	if expiry <= 0 {
		expiry = 3 * time.Second
	}

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &PresenceTracker{
		bus:         bus,
		expiry:      expiry,
		rateLimiter: rateLimiter,
		timers:      make(map[string]*time.Timer),
	}
}

// SetTyping records the user's typing state in a conversation and broadcasts
// it. Setting typing rearms the expiry timer; each fresh keystroke event
// keeps the indicator alive for another window. Start events from a
// flooding client are dropped; stop events always go through so an
// indicator cannot get stuck on.
func (t *PresenceTracker) SetTyping(conversationID, userID string, typing bool) {
	if typing {
		if allowed, _ := t.rateLimiter.Allow(userID, "typing"); !allowed {
			return
		}
	}

	t.bus.TrackPresence(conversationID, realtime.PresenceState{
		UserID: userID,
		Typing: typing,
	})

	key := conversationID + ":" + userID

	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, exists := t.timers[key]; exists {
		timer.Stop()
		delete(t.timers, key)
	}

	if typing {
		t.timers[key] = time.AfterFunc(t.expiry, func() {
			t.SetTyping(conversationID, userID, false)
		})
	}
}
