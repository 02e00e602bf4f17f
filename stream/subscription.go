package stream

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TristanServices/voice/rtp"
)

// Subscription is the per-source-id conduit delivering decoded media
// frames to one consumer.
//
// The receiver is the single producer: Push queues frames without ever
// blocking, and a pump goroutine delivers them on Frames in arrival
// order. The consumer reads Frames until it is closed, then checks Err
// to distinguish its own Close from a terminal failure. Close may be
// called at any time; the router is notified exactly once either way.
type Subscription struct {
	ssrc    uint32
	traceID string

	mu     sync.Mutex
	queue  []*rtp.Packet
	err    error
	failed bool
	closed bool

	out  chan *rtp.Packet
	wake chan struct{}
	done chan struct{}

	closeOnce   sync.Once
	releaseOnce sync.Once
	release     func()
}

// newSubscription creates a live subscription and starts its delivery
// pump. release fires exactly once when the subscription ends, from
// either side.
func newSubscription(ssrc uint32, release func()) *Subscription {
	s := &Subscription{
		ssrc:    ssrc,
		traceID: uuid.NewString(),
		out:     make(chan *rtp.Packet),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		release: release,
	}
	go s.pump()

	logrus.WithFields(logrus.Fields{
		"function": "newSubscription",
		"ssrc":     ssrc,
		"trace_id": s.traceID,
	}).Debug("Subscription opened")

	return s
}

// SSRC returns the source identifier this subscription is keyed by.
func (s *Subscription) SSRC() uint32 {
	return s.ssrc
}

// Frames returns the ordered stream of decoded frames. The channel is
// closed when the consumer calls Close, or after queued frames drain
// following a terminal failure.
func (s *Subscription) Frames() <-chan *rtp.Packet {
	return s.out
}

// Err returns the terminal failure that ended this subscription, or
// nil if it ended by consumer Close or is still live. Meaningful once
// Frames is closed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription from the consumer side: delivery stops
// immediately, queued frames are discarded, and the router forgets the
// source id. Safe to call more than once and concurrently with Push.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)

		logrus.WithFields(logrus.Fields{
			"function": "Close",
			"ssrc":     s.ssrc,
			"trace_id": s.traceID,
		}).Debug("Subscription closed by consumer")
	})
	s.notifyRelease()
}

// Push queues one frame for delivery. It never blocks; frames pushed
// after the subscription ended are dropped. Producer side only.
func (s *Subscription) Push(pkt *rtp.Packet) {
	s.mu.Lock()
	if s.failed || s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, pkt)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Fail ends the subscription with a terminal error: intake stops,
// already-queued frames still drain to the consumer, then Frames
// closes and Err reports the failure. The router is notified
// immediately so later datagrams for this source id drop at the route
// step. Producer side only.
func (s *Subscription) Fail(err error) {
	s.mu.Lock()
	if s.failed || s.closed {
		s.mu.Unlock()
		return
	}
	s.failed = true
	s.err = err
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	logrus.WithFields(logrus.Fields{
		"function": "Fail",
		"ssrc":     s.ssrc,
		"trace_id": s.traceID,
		"error":    err,
	}).Warn("Subscription terminated by receiver")

	s.notifyRelease()
}

func (s *Subscription) notifyRelease() {
	s.releaseOnce.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// pump delivers queued frames in order until the consumer closes the
// subscription or a failure drains out.
func (s *Subscription) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.failed && !s.closed {
			s.mu.Unlock()
			select {
			case <-s.wake:
			case <-s.done:
			}
			s.mu.Lock()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		if len(s.queue) == 0 {
			// Failed and fully drained.
			s.mu.Unlock()
			return
		}
		pkt := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- pkt:
		case <-s.done:
			return
		}
	}
}
