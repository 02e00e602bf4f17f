package voice

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// readBufferSize bounds one datagram read. Voice datagrams are far
	// smaller; anything larger is discarded by the length checks
	// downstream.
	readBufferSize = 2048

	// readDeadline is how often the pump wakes to check for
	// cancellation while no datagrams arrive.
	readDeadline = 100 * time.Millisecond
)

// Run pumps datagrams from an already-open transport connection into
// the pipeline until ctx is cancelled or the connection fails.
//
// The connection's lifecycle belongs to the caller: Run never dials,
// reconnects, or closes. Cancellation returns ctx.Err; a read error
// other than a deadline timeout is returned as-is.
func (r *Receiver) Run(ctx context.Context, conn net.PacketConn) error {
	logrus.WithFields(logrus.Fields{
		"function": "Run",
		"local":    conn.LocalAddr().String(),
	}).Info("Datagram pump started")

	buffer := make([]byte, readBufferSize)
	for {
		select {
		case <-ctx.Done():
			logrus.WithFields(logrus.Fields{
				"function": "Run",
			}).Info("Datagram pump stopped")
			return ctx.Err()
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		n, _, err := conn.ReadFrom(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			logrus.WithFields(logrus.Fields{
				"function": "Run",
				"error":    err,
			}).Error("Datagram pump read failed")
			return err
		}

		r.HandleDatagram(buffer[:n])
	}
}
