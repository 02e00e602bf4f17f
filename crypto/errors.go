package crypto

import "errors"

// Sentinel errors for session cipher operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrAuthenticationFailed indicates the datagram failed message
	// authentication: tampered, misframed, or sealed under another key.
	ErrAuthenticationFailed = errors.New("decryption failed: message authentication failed")

	// ErrPacketTooShort indicates the datagram cannot contain a
	// ciphertext span in the context's cipher mode.
	ErrPacketTooShort = errors.New("packet too short for cipher mode")

	// ErrKeySize indicates a secret key of the wrong length.
	ErrKeySize = errors.New("invalid secret key size")

	// ErrUnknownMode indicates an unsupported cipher mode value.
	ErrUnknownMode = errors.New("unknown cipher mode")
)
