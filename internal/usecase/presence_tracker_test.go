package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTypingBroadcastsImmediately(t *testing.T) {
	bus := &recordingBus{}
	tracker := NewPresenceTracker(bus, time.Minute)

	tracker.SetTyping("conv-1", "alice", true)

	states := bus.presenceStates()
	require.Len(t, states, 1)
	assert.Equal(t, "alice", states[0].UserID)
	assert.True(t, states[0].Typing)
}

func TestTypingExpiresOnItsOwn(t *testing.T) {
	bus := &recordingBus{}
	tracker := NewPresenceTracker(bus, 20*time.Millisecond)

	tracker.SetTyping("conv-1", "alice", true)

	assert.Eventually(t, func() bool {
		states := bus.presenceStates()
		last := states[len(states)-1]
		return last.UserID == "alice" && !last.Typing
	}, time.Second, 5*time.Millisecond)
}

func TestExplicitStopCancelsExpiryTimer(t *testing.T) {
	bus := &recordingBus{}
	tracker := NewPresenceTracker(bus, 20*time.Millisecond)

	tracker.SetTyping("conv-1", "alice", true)
	tracker.SetTyping("conv-1", "alice", false)

	time.Sleep(60 * time.Millisecond)

	// One start, one stop; no third update from a leftover timer.
	assert.Len(t, bus.presenceStates(), 2)
}

func TestRepeatedTypingRearmsExpiry(t *testing.T) {
	bus := &recordingBus{}
	tracker := NewPresenceTracker(bus, 40*time.Millisecond)

	tracker.SetTyping("conv-1", "alice", true)
	time.Sleep(25 * time.Millisecond)
	tracker.SetTyping("conv-1", "alice", true)
	time.Sleep(25 * time.Millisecond)

	// The second keystroke pushed expiry out; still typing here.
	states := bus.presenceStates()
	last := states[len(states)-1]
	assert.True(t, last.Typing)

	assert.Eventually(t, func() bool {
		states := bus.presenceStates()
		return !states[len(states)-1].Typing
	}, time.Second, 5*time.Millisecond)
}

func TestTrackersAreIndependentPerConversationAndUser(t *testing.T) {
	bus := &recordingBus{}
	tracker := NewPresenceTracker(bus, 20*time.Millisecond)

	tracker.SetTyping("conv-1", "alice", true)
	tracker.SetTyping("conv-2", "alice", true)
	tracker.SetTyping("conv-1", "bob", true)

	assert.Eventually(t, func() bool {
		cleared := 0
		for _, s := range bus.presenceStates() {
			if !s.Typing {
				cleared++
			}
		}
		return cleared == 3
	}, time.Second, 5*time.Millisecond)
}

func TestZeroExpiryFallsBackToDefault(t *testing.T) {
	tracker := NewPresenceTracker(&recordingBus{}, 0)
	assert.Equal(t, 3*time.Second, tracker.expiry)
}
