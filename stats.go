package voice

import "sync/atomic"

// Stats is a point-in-time snapshot of the receive pipeline's
// counters. Drops are classified by the spec's silent-drop reasons;
// none of them is an error condition.
type Stats struct {
	// Datagrams is every datagram handed to the receiver.
	Datagrams uint64

	// DroppedShort counts datagrams too small to carry a source id.
	DroppedShort uint64

	// DroppedUnrouted counts datagrams for source ids nobody
	// subscribed to.
	DroppedUnrouted uint64

	// DroppedUnidentified counts datagrams for source ids with no
	// known participant binding.
	DroppedUnidentified uint64

	// DroppedUnkeyed counts datagrams that arrived before a cipher
	// context was set.
	DroppedUnkeyed uint64

	// DecodeFailures counts datagrams that failed authentication or
	// normalization and terminated their channel.
	DecodeFailures uint64

	// FramesDelivered counts frames pushed to subscribers.
	FramesDelivered uint64
}

// stats holds the live counters behind a Stats snapshot.
type stats struct {
	datagrams           atomic.Uint64
	droppedShort        atomic.Uint64
	droppedUnrouted     atomic.Uint64
	droppedUnidentified atomic.Uint64
	droppedUnkeyed      atomic.Uint64
	decodeFailures      atomic.Uint64
	framesDelivered     atomic.Uint64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Datagrams:           s.datagrams.Load(),
		DroppedShort:        s.droppedShort.Load(),
		DroppedUnrouted:     s.droppedUnrouted.Load(),
		DroppedUnidentified: s.droppedUnidentified.Load(),
		DroppedUnkeyed:      s.droppedUnkeyed.Load(),
		DecodeFailures:      s.decodeFailures.Load(),
		FramesDelivered:     s.framesDelivered.Load(),
	}
}
