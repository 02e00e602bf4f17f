// Package audio decodes the compressed frames the pipeline delivers
// into PCM for playback.
//
// This is a downstream collaborator of the receive pipeline, not part
// of its hot path: consumers pull frames from their subscription and
// hand the Opus payloads to a Decoder at their own pace. Decoding uses
// pion/opus (pure Go).
package audio

import (
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// maxFrameSamples bounds one decoded Opus frame: 120 ms at 48 kHz.
const maxFrameSamples = 5760

// Decoder turns Opus voice frames into 16-bit PCM samples.
//
// The internal output buffer is reused across calls, so a Decoder must
// not be shared by concurrent consumers; each subscription gets its
// own.
type Decoder struct {
	decoder opus.Decoder
	output  []byte
}

// NewDecoder creates an Opus decoder for voice playback.
func NewDecoder() *Decoder {
	logrus.WithFields(logrus.Fields{
		"function": "NewDecoder",
	}).Debug("Creating Opus decoder")

	return &Decoder{
		decoder: opus.NewDecoder(),
		output:  make([]byte, maxFrameSamples*2),
	}
}

// Decode converts one Opus frame into PCM samples and reports the
// frame's sample rate. Stereo frames are returned interleaved.
func (d *Decoder) Decode(frame []byte) ([]int16, uint32, error) {
	if len(frame) == 0 {
		return nil, 0, fmt.Errorf("empty opus frame")
	}

	bandwidth, isStereo, err := d.decoder.Decode(frame, d.output)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "Decode",
			"frame_size": len(frame),
			"error":      err.Error(),
		}).Error("Opus decode failed")
		return nil, 0, fmt.Errorf("opus decode failed: %w", err)
	}

	sampleCount := len(d.output) / 2
	if isStereo {
		sampleCount /= 2
	}

	pcm := make([]int16, sampleCount)
	for i := 0; i < sampleCount; i++ {
		pcm[i] = int16(d.output[i*2]) | int16(d.output[i*2+1])<<8
	}

	return pcm, uint32(bandwidth.SampleRate()), nil
}

// PCMToBytes converts PCM samples to little-endian bytes for playback
// APIs that consume raw byte streams.
func PCMToBytes(pcm []int16) []byte {
	buf := make([]byte, len(pcm)*2)
	for i, sample := range pcm {
		buf[i*2] = byte(sample)
		buf[i*2+1] = byte(sample >> 8)
	}
	return buf
}

// BytesToPCM converts little-endian bytes back to PCM samples. A
// trailing odd byte is ignored.
func BytesToPCM(buf []byte) []int16 {
	pcm := make([]int16, len(buf)/2)
	for i := range pcm {
		pcm[i] = int16(buf[i*2]) | int16(buf[i*2+1])<<8
	}
	return pcm
}
