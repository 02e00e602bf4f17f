// Package stream fans decoded media frames out to per-source-id
// subscriptions.
//
// The Router owns at most one live Subscription per source id:
// Subscribe is idempotent while a subscription lives, Route is the
// cheap hot-path lookup, and a subscription ending from either side
// removes its registration through a one-shot notification.
package stream

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Router maps source identifiers to live subscriptions.
//
// All methods are safe for concurrent use.
type Router struct {
	mu   sync.RWMutex
	subs map[uint32]*Subscription

	// resolve maps a participant identity to their primary source id.
	// Injected so the router needs no view of the identity registry.
	resolve func(userID string) (uint32, bool)
}

// NewRouter creates an empty router. resolve may be nil, in which case
// SubscribeUser always fails with ErrUnknownTarget.
func NewRouter(resolve func(userID string) (uint32, bool)) *Router {
	return &Router{
		subs:    make(map[uint32]*Subscription),
		resolve: resolve,
	}
}

// Subscribe returns the live subscription for a source id, creating
// one if none exists. Repeated calls before the subscription ends
// return the same instance.
func (r *Router) Subscribe(ssrc uint32) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub, ok := r.subs[ssrc]; ok {
		return sub
	}

	var sub *Subscription
	sub = newSubscription(ssrc, func() {
		r.releaseSub(ssrc, sub)
	})
	r.subs[ssrc] = sub

	logrus.WithFields(logrus.Fields{
		"function": "Subscribe",
		"ssrc":     ssrc,
	}).Info("Output channel registered")

	return sub
}

// SubscribeUser resolves a participant identity to their primary
// source id and subscribes to it. Fails with ErrUnknownTarget when the
// identity has no known binding.
func (r *Router) SubscribeUser(userID string) (*Subscription, error) {
	if r.resolve == nil {
		return nil, fmt.Errorf("%w: no resolver configured", ErrUnknownTarget)
	}
	ssrc, ok := r.resolve(userID)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "SubscribeUser",
			"user_id":  userID,
		}).Debug("Subscription target unknown")
		return nil, fmt.Errorf("%w: user %q", ErrUnknownTarget, userID)
	}
	return r.Subscribe(ssrc), nil
}

// Route returns the live subscription for a source id, or nil. Pure
// lookup for the datagram hot path; never creates.
func (r *Router) Route(ssrc uint32) *Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subs[ssrc]
}

// releaseSub removes a subscription's registration when it ends. The
// entry is deleted only while it still points at that subscription, so
// a replacement registered in the meantime survives.
func (r *Router) releaseSub(ssrc uint32, sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.subs[ssrc]; ok && current == sub {
		delete(r.subs, ssrc)
		logrus.WithFields(logrus.Fields{
			"function": "releaseSub",
			"ssrc":     ssrc,
		}).Debug("Output channel unregistered")
	}
}
