package rtp

import "errors"

// Sentinel errors for datagram decoding.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrShortDatagram indicates a datagram too small to carry the
	// fixed transport header.
	ErrShortDatagram = errors.New("datagram too short for transport header")

	// ErrTruncatedExtension indicates a decrypted payload whose
	// header-extension block claims more elements than the payload
	// holds.
	ErrTruncatedExtension = errors.New("header extension truncated")
)
