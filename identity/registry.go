// Package identity tracks which participant owns which transport
// source identifier.
//
// The signaling collaborator announces bindings as participants join,
// speak, or disconnect; the datagram hot path resolves source ids back
// to participants through the same registry. Bindings are owned
// exclusively by the registry and replaced atomically on each update.
package identity

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Binding associates a participant with their media source identifiers.
type Binding struct {
	// UserID is the participant's stable logical identity.
	UserID string

	// AudioSSRC is the source identifier of the participant's primary
	// audio stream.
	AudioSSRC uint32

	// VideoSSRC is the source identifier of the participant's
	// secondary stream. Zero means the participant has none; zero is
	// never a valid source id for a secondary stream on this wire.
	VideoSSRC uint32
}

// Registry maintains the current participant bindings, keyed both by
// participant identity and by primary source id.
//
// All methods are safe for concurrent use; signaling updates and hot
// path lookups may race freely.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*Binding
	bySSRC map[uint32]*Binding
}

// NewRegistry creates an empty participant registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]*Binding),
		bySSRC: make(map[uint32]*Binding),
	}
}

// Update inserts or replaces the binding for a participant.
//
// A prior binding's audio source id stops resolving through this
// participant; any output channel keyed by the old id is unaffected
// here. Duplicate updates are idempotent replacements. An update
// without a secondary id clears a previously known one.
func (r *Registry) Update(userID string, audioSSRC, videoSSRC uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	binding := &Binding{
		UserID:    userID,
		AudioSSRC: audioSSRC,
		VideoSSRC: videoSSRC,
	}

	if old, ok := r.byUser[userID]; ok && old.AudioSSRC != audioSSRC {
		// Drop the reverse entry only while this participant still
		// owns it; another binding may have claimed the id since.
		if current, ok := r.bySSRC[old.AudioSSRC]; ok && current.UserID == userID {
			delete(r.bySSRC, old.AudioSSRC)
		}
	}

	r.byUser[userID] = binding
	r.bySSRC[audioSSRC] = binding

	logrus.WithFields(logrus.Fields{
		"function":   "Update",
		"user_id":    userID,
		"audio_ssrc": audioSSRC,
		"video_ssrc": videoSSRC,
	}).Debug("Participant binding updated")
}

// Remove deletes the binding for a participant. Removing an unknown
// participant is a no-op.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	binding, ok := r.byUser[userID]
	if !ok {
		return
	}

	delete(r.byUser, userID)
	if current, ok := r.bySSRC[binding.AudioSSRC]; ok && current.UserID == userID {
		delete(r.bySSRC, binding.AudioSSRC)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Remove",
		"user_id":  userID,
	}).Debug("Participant binding removed")
}

// ByUser returns the current binding for a participant identity, or
// false if none is known.
func (r *Registry) ByUser(userID string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, ok := r.byUser[userID]
	if !ok {
		return Binding{}, false
	}
	return *binding, true
}

// BySSRC returns the binding whose primary audio stream carries the
// given source id, or false if no participant owns it.
func (r *Registry) BySSRC(ssrc uint32) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, ok := r.bySSRC[ssrc]
	if !ok {
		return Binding{}, false
	}
	return *binding, true
}
