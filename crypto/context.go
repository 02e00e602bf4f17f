package crypto

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the secret key length required by the session cipher.
	KeySize = 32

	// NonceSize is the full nonce length consumed by the cipher.
	NonceSize = 24

	// headerLen is the fixed voice transport header preceding the
	// ciphertext in every datagram.
	headerLen = 12
)

// Mode selects where a datagram carries its nonce material.
type Mode uint8

const (
	// ModeNormal uses the 12-byte transport header as the nonce,
	// zero-extended to the full nonce length. The ciphertext runs from
	// the end of the header to the end of the datagram.
	ModeNormal Mode = iota

	// ModeSuffix carries a full random nonce in the last 24 bytes of
	// the datagram; the ciphertext ends where the nonce begins.
	ModeSuffix

	// ModeLite carries a 4-byte counter in the last 4 bytes of the
	// datagram, zero-extended to the full nonce length.
	ModeLite
)

// String returns the short mode name used in log fields.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSuffix:
		return "suffix"
	case ModeLite:
		return "lite"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// trailer returns how many trailing datagram bytes belong to the nonce
// rather than to the ciphertext.
func (m Mode) trailer() int {
	switch m {
	case ModeSuffix:
		return NonceSize
	case ModeLite:
		return 4
	default:
		return 0
	}
}

// Context holds the active session cipher: the negotiated mode, the
// secret key, and the nonce scratch buffer reused across Open calls.
//
// A Context is read-mostly snapshot data. The session layer replaces it
// wholesale when keys rotate; it is never partially updated. The mode is
// fixed for the life of the context, which is what keeps the reused
// scratch valid between calls: each mode always writes the same scratch
// prefix and the tail stays zero.
//
// Open mutates the scratch, so a Context must not be shared by
// concurrent decoders without external serialization.
type Context struct {
	mode  Mode
	key   [KeySize]byte
	nonce [NonceSize]byte
}

// NewContext builds a session cipher context for the given mode and
// secret key. The key must be exactly KeySize bytes.
func NewContext(mode Mode, secretKey []byte) (*Context, error) {
	if mode != ModeNormal && mode != ModeSuffix && mode != ModeLite {
		logrus.WithFields(logrus.Fields{
			"function": "NewContext",
			"mode":     uint8(mode),
		}).Error("Unsupported cipher mode")
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(mode))
	}
	if len(secretKey) != KeySize {
		logrus.WithFields(logrus.Fields{
			"function": "NewContext",
			"key_size": len(secretKey),
		}).Error("Invalid secret key size")
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrKeySize, len(secretKey), KeySize)
	}

	ctx := &Context{mode: mode}
	copy(ctx.key[:], secretKey)

	logrus.WithFields(logrus.Fields{
		"function": "NewContext",
		"mode":     mode.String(),
	}).Debug("Session cipher context created")

	return ctx, nil
}

// Mode returns the cipher framing this context was built with.
func (c *Context) Mode() Mode {
	return c.mode
}

// Open authenticates and decrypts one voice datagram.
//
// The ciphertext span always starts after the fixed transport header;
// trailing-nonce modes additionally exclude their nonce bytes from the
// end. A datagram too short to contain such a span is rejected with
// ErrPacketTooShort. Authentication failure yields
// ErrAuthenticationFailed with no partial output. The input is never
// modified; the plaintext is returned in a fresh buffer.
func (c *Context) Open(datagram []byte) ([]byte, error) {
	start := headerLen
	end := len(datagram) - c.mode.trailer()
	if end < start {
		return nil, fmt.Errorf("%w: %d bytes in %s mode", ErrPacketTooShort, len(datagram), c.mode)
	}

	switch c.mode {
	case ModeNormal:
		copy(c.nonce[:headerLen], datagram[:headerLen])
	case ModeSuffix:
		copy(c.nonce[:], datagram[end:])
	case ModeLite:
		copy(c.nonce[:4], datagram[end:])
	}

	plain, ok := secretbox.Open(nil, datagram[start:end], &c.nonce, &c.key)
	if !ok {
		return nil, ErrAuthenticationFailed
	}

	return plain, nil
}
