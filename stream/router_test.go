package stream

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TristanServices/voice/rtp"
)

func testFrame(ssrc uint32, seq uint16) *rtp.Packet {
	return &rtp.Packet{
		Version:  0x80,
		Type:     0x78,
		Sequence: seq,
		SSRC:     ssrc,
		Opus:     []byte{0xF8},
	}
}

// receiveFrame reads one frame with a timeout so a broken pump fails
// the test instead of hanging it.
func receiveFrame(t *testing.T, sub *Subscription) *rtp.Packet {
	t.Helper()
	select {
	case pkt, ok := <-sub.Frames():
		require.True(t, ok, "Frames() closed while a frame was expected")
		return pkt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

// waitClosed waits for Frames() to close.
func waitClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for Frames() to close")
		}
	}
}

func TestSubscribeIdempotent(t *testing.T) {
	r := NewRouter(nil)

	first := r.Subscribe(1234)
	second := r.Subscribe(1234)
	assert.Same(t, first, second, "same live target must return the identical subscription")

	first.Close()
}

func TestSubscribeUser(t *testing.T) {
	r := NewRouter(func(userID string) (uint32, bool) {
		if userID == "alice" {
			return 1234, true
		}
		return 0, false
	})

	sub, err := r.SubscribeUser("alice")
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), sub.SSRC())
	assert.Same(t, sub, r.Subscribe(1234))
	sub.Close()

	_, err = r.SubscribeUser("ghost")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestSubscribeUserWithoutResolver(t *testing.T) {
	r := NewRouter(nil)
	_, err := r.SubscribeUser("alice")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestRouteIsPureLookup(t *testing.T) {
	r := NewRouter(nil)
	assert.Nil(t, r.Route(1234), "Route must not create subscriptions")

	sub := r.Subscribe(1234)
	assert.Same(t, sub, r.Route(1234))
	sub.Close()
}

func TestFramesDeliveredInOrder(t *testing.T) {
	r := NewRouter(nil)
	sub := r.Subscribe(1234)
	defer sub.Close()

	for seq := uint16(0); seq < 10; seq++ {
		sub.Push(testFrame(1234, seq))
	}
	for seq := uint16(0); seq < 10; seq++ {
		assert.Equal(t, seq, receiveFrame(t, sub).Sequence)
	}
}

func TestCloseUnregisters(t *testing.T) {
	r := NewRouter(nil)
	sub := r.Subscribe(1234)

	sub.Close()
	assert.Nil(t, r.Route(1234), "closed subscription must leave the router")
	waitClosed(t, sub)
	assert.NoError(t, sub.Err())

	// Push after close is a silent drop, not a panic.
	sub.Push(testFrame(1234, 1))

	// A fresh Subscribe opens a distinct replacement.
	again := r.Subscribe(1234)
	assert.NotSame(t, sub, again)
	again.Close()
}

func TestFailDrainsThenCloses(t *testing.T) {
	r := NewRouter(nil)
	sub := r.Subscribe(1234)

	sub.Push(testFrame(1234, 1))
	sub.Push(testFrame(1234, 2))

	cause := errors.New("authentication failed")
	sub.Fail(cause)

	assert.Nil(t, r.Route(1234), "failed subscription must leave the router immediately")

	// Frames queued before the failure still reach the consumer.
	assert.Equal(t, uint16(1), receiveFrame(t, sub).Sequence)
	assert.Equal(t, uint16(2), receiveFrame(t, sub).Sequence)
	waitClosed(t, sub)

	assert.ErrorIs(t, sub.Err(), cause)

	// Intake stopped at the failure point.
	sub.Push(testFrame(1234, 3))
}

func TestFailAffectsOnlyOneSubscription(t *testing.T) {
	r := NewRouter(nil)
	failing := r.Subscribe(1111)
	healthy := r.Subscribe(2222)
	defer healthy.Close()

	failing.Fail(errors.New("authentication failed"))
	waitClosed(t, failing)

	healthy.Push(testFrame(2222, 7))
	assert.Equal(t, uint16(7), receiveFrame(t, healthy).Sequence)
	assert.Same(t, healthy, r.Route(2222))
}

func TestCloseIsIdempotent(t *testing.T) {
	r := NewRouter(nil)
	sub := r.Subscribe(1234)

	sub.Close()
	sub.Close()
	sub.Fail(errors.New("late failure"))

	waitClosed(t, sub)
	assert.NoError(t, sub.Err(), "consumer close wins over a later failure")
}

// A replacement subscription registered after the original ended must
// not be evicted by the original's release notification.
func TestStaleReleaseKeepsReplacement(t *testing.T) {
	r := NewRouter(nil)

	original := r.Subscribe(1234)
	original.Close()
	replacement := r.Subscribe(1234)
	defer replacement.Close()

	original.Close() // no-op, but must not unregister the replacement
	assert.Same(t, replacement, r.Route(1234))
}
