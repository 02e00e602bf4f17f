package voice

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/TristanServices/voice/crypto"
	"github.com/TristanServices/voice/identity"
	"github.com/TristanServices/voice/rtp"
	"github.com/TristanServices/voice/stream"
)

// Receiver is the receive-side pipeline orchestrator: it feeds
// signaling events into its identity registry, decodes incoming
// datagrams with the active session cipher, and fans decoded frames
// out to per-source-id subscriptions.
//
// A receiver is stateless per packet; all session state lives in its
// two owned collaborators and the replaceable cipher snapshot. Methods
// are safe for concurrent use from the signaling and datagram paths.
type Receiver struct {
	registry *identity.Registry
	router   *stream.Router

	// cipher is the active session cipher snapshot; nil until the
	// session layer keys the receiver. Replaced wholesale on rekey.
	cipherMu sync.RWMutex
	cipher   *crypto.Context

	stats stats
}

// NewReceiver creates a receiver with an empty registry and no active
// cipher. Datagrams drop silently until SetCipher is called and
// signaling announces bindings.
func NewReceiver() *Receiver {
	r := &Receiver{
		registry: identity.NewRegistry(),
	}
	r.router = stream.NewRouter(func(userID string) (uint32, bool) {
		binding, ok := r.registry.ByUser(userID)
		if !ok {
			return 0, false
		}
		return binding.AudioSSRC, true
	})

	logrus.WithFields(logrus.Fields{
		"function": "NewReceiver",
	}).Info("Voice receiver created")

	return r
}

// SetCipher replaces the active session cipher. Pass nil to return to
// the unkeyed state, in which all datagrams drop silently.
func (r *Receiver) SetCipher(cipher *crypto.Context) {
	r.cipherMu.Lock()
	r.cipher = cipher
	r.cipherMu.Unlock()

	fields := logrus.Fields{"function": "SetCipher"}
	if cipher != nil {
		fields["mode"] = cipher.Mode().String()
	}
	logrus.WithFields(fields).Info("Session cipher replaced")
}

// HandleEvent dispatches one signaling event to the identity registry.
// Unrecognized event shapes are ignored, not errored.
func (r *Receiver) HandleEvent(event any) {
	switch e := event.(type) {
	case ConnectUpdate:
		r.registry.Update(e.UserID, e.AudioSSRC, e.VideoSSRC)
	case *ConnectUpdate:
		r.registry.Update(e.UserID, e.AudioSSRC, e.VideoSSRC)
	case Disconnect:
		r.registry.Remove(e.UserID)
	case *Disconnect:
		r.registry.Remove(e.UserID)
	default:
		logrus.WithFields(logrus.Fields{
			"function": "HandleEvent",
			"type":     fmt.Sprintf("%T", event),
		}).Debug("Ignoring unrecognized signaling event")
	}
}

// Subscribe returns the output channel for a source id, creating one
// on first use. Repeated calls for a live source id return the same
// subscription.
func (r *Receiver) Subscribe(ssrc uint32) *stream.Subscription {
	return r.router.Subscribe(ssrc)
}

// SubscribeUser resolves a participant identity through the registry
// and subscribes to their primary audio stream. Fails with
// stream.ErrUnknownTarget when the participant has no known binding.
func (r *Receiver) SubscribeUser(userID string) (*stream.Subscription, error) {
	return r.router.SubscribeUser(userID)
}

// Registry exposes the identity registry for read-side queries.
func (r *Receiver) Registry() *identity.Registry {
	return r.registry
}

// Stats returns a snapshot of the pipeline counters.
func (r *Receiver) Stats() Stats {
	return r.stats.snapshot()
}

// HandleDatagram runs one raw datagram through the pipeline: route by
// source id, check the speaker is identified and the session keyed,
// decode, and deliver.
//
// Every early exit is a silent drop; these are expected transient
// states, not errors. A decode failure terminates only the affected
// subscription and never propagates to other channels or the receiver.
func (r *Receiver) HandleDatagram(datagram []byte) {
	r.stats.datagrams.Add(1)

	if len(datagram) < rtp.HeaderSize {
		r.stats.droppedShort.Add(1)
		return
	}

	ssrc := rtp.SSRC(datagram)

	sub := r.router.Route(ssrc)
	if sub == nil {
		r.stats.droppedUnrouted.Add(1)
		return
	}

	binding, ok := r.registry.BySSRC(ssrc)
	if !ok {
		r.stats.droppedUnidentified.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "HandleDatagram",
			"ssrc":     ssrc,
		}).Debug("Dropping datagram for unidentified speaker")
		return
	}

	r.cipherMu.RLock()
	cipher := r.cipher
	r.cipherMu.RUnlock()
	if cipher == nil {
		r.stats.droppedUnkeyed.Add(1)
		return
	}

	pkt, err := rtp.Decode(datagram, cipher)
	if err != nil {
		r.stats.decodeFailures.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "HandleDatagram",
			"ssrc":     ssrc,
			"user_id":  binding.UserID,
			"error":    err,
		}).Warn("Datagram decode failed, terminating channel")
		sub.Fail(err)
		return
	}

	r.stats.framesDelivered.Add(1)
	sub.Push(pkt)
}
