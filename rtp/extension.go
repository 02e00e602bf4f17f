package rtp

import (
	"encoding/binary"
	"fmt"
)

const (
	// extensionMarker opens an RTP one-byte header-extension block.
	extensionMarker = 0xBEDE

	// extensionHeaderSize covers the two marker bytes and the 16-bit
	// element count that follow them.
	extensionHeaderSize = 4
)

// StripExtension removes the optional header-extension block some
// senders prepend to the compressed audio.
//
// A payload opening with the 0xBEDE marker carries a 16-bit big-endian
// element count followed by that many one-byte-header elements: the
// header byte's low nibble plus one gives the element's body length,
// except that an all-zero header byte is a lone padding byte with no
// body. A single 0x00 or 0x02 byte after the last counted element is an
// alignment marker and is skipped as well. Payloads without the marker
// are returned unchanged.
//
// A block that claims more elements than the payload holds yields
// ErrTruncatedExtension; no partial strip is returned.
func StripExtension(payload []byte) ([]byte, error) {
	if len(payload) <= extensionHeaderSize || binary.BigEndian.Uint16(payload[:2]) != extensionMarker {
		return payload, nil
	}

	count := int(binary.BigEndian.Uint16(payload[2:4]))
	offset := extensionHeaderSize
	for i := 0; i < count; i++ {
		if offset >= len(payload) {
			return nil, fmt.Errorf("%w: element %d of %d starts past payload end", ErrTruncatedExtension, i+1, count)
		}
		header := payload[offset]
		offset++
		if header == 0 {
			continue // padding element, no body
		}
		offset += int(header&0x0F) + 1
		if offset > len(payload) {
			return nil, fmt.Errorf("%w: element %d of %d overruns payload", ErrTruncatedExtension, i+1, count)
		}
	}

	if offset < len(payload) && (payload[offset] == 0x00 || payload[offset] == 0x02) {
		offset++
	}

	return payload[offset:], nil
}
