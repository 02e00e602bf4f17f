// Package rtp models the voice datagrams the transport delivers and
// turns them into clean media frames.
//
// Every datagram begins with a fixed 12-byte RTP-style header that is
// never encrypted; the remainder is ciphertext framed by the session's
// cipher mode. Decode authenticates and decrypts that remainder and
// strips the optional header-extension block some senders prepend to
// the compressed audio.
package rtp

import (
	"encoding/binary"
	"fmt"

	"github.com/TristanServices/voice/crypto"
)

// HeaderSize is the length of the fixed transport header that precedes
// the ciphertext in every voice datagram.
const HeaderSize = 12

// ssrcOffset is where the 32-bit source identifier sits in the header.
const ssrcOffset = 8

// Packet is one decoded voice frame as delivered to subscribers.
//
// Wire format of the datagram it is parsed from:
//
//	[VERSION(1)][TYPE(1)][SEQUENCE(2 BE)][TIMESTAMP(4 BE)][SSRC(4 BE)][CIPHERTEXT...]
type Packet struct {
	Version   byte   // version/flags byte, 0x80 for voice
	Type      byte   // payload type byte, 0x78 for voice
	Sequence  uint16 // sender-assigned frame sequence number
	Timestamp uint32 // sampling timestamp at the sender's clock rate
	SSRC      uint32 // source identifier of the originating stream
	Opus      []byte // decrypted, extension-stripped compressed audio
}

// SSRC reads the source identifier at its fixed header offset in a raw
// datagram. The caller must have checked buf against HeaderSize.
func SSRC(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf[ssrcOffset : ssrcOffset+4])
}

// Decode authenticates, decrypts, and normalizes one raw datagram into
// a media frame.
//
// The datagram's header fields are carried over onto the returned
// Packet; its ciphertext is opened with the supplied session cipher and
// any header-extension block is stripped from the decrypted payload.
// Decoding is atomic: any failure returns a nil Packet and an error
// classifiable with errors.Is against the crypto and rtp sentinels.
func Decode(datagram []byte, cipher *crypto.Context) (*Packet, error) {
	if cipher == nil {
		return nil, fmt.Errorf("cipher context cannot be nil")
	}
	if len(datagram) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortDatagram, len(datagram))
	}

	payload, err := cipher.Open(datagram)
	if err != nil {
		return nil, fmt.Errorf("open datagram: %w", err)
	}

	opus, err := StripExtension(payload)
	if err != nil {
		return nil, fmt.Errorf("strip header extension: %w", err)
	}

	return &Packet{
		Version:   datagram[0],
		Type:      datagram[1],
		Sequence:  binary.BigEndian.Uint16(datagram[2:4]),
		Timestamp: binary.BigEndian.Uint32(datagram[4:8]),
		SSRC:      binary.BigEndian.Uint32(datagram[ssrcOffset:HeaderSize]),
		Opus:      opus,
	}, nil
}
