// Package voice implements the receive-side packet pipeline for a
// real-time voice transport.
//
// The pipeline accepts encrypted datagrams carrying compressed audio,
// identifies which remote participant each datagram belongs to,
// decrypts and normalizes it into a clean audio frame, and routes the
// frame to a per-participant output channel a consumer reads as a
// continuous stream.
//
// The signaling channel, the datagram transport socket, and the key
// negotiation are external collaborators: signaling feeds events into
// HandleEvent, the session layer supplies the cipher via SetCipher,
// and the transport hands raw datagrams to HandleDatagram (or an open
// net.PacketConn to Run).
//
// # Getting Started
//
//	recv := voice.NewReceiver()
//
//	cipher, err := crypto.NewContext(crypto.ModeLite, secretKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	recv.SetCipher(cipher)
//
//	// Signaling announces who owns which source id.
//	recv.HandleEvent(voice.ConnectUpdate{
//	    UserID:    "alice",
//	    AudioSSRC: 1234,
//	})
//
//	// Subscribe to a participant's audio and consume frames.
//	sub, err := recv.SubscribeUser("alice")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sub.Close()
//
//	go func() {
//	    for frame := range sub.Frames() {
//	        play(frame.Opus)
//	    }
//	    if err := sub.Err(); err != nil {
//	        log.Printf("stream ended: %v", err)
//	    }
//	}()
//
//	// Pump datagrams from the transport until cancelled.
//	err = recv.Run(ctx, conn)
//
// Datagrams that arrive before signaling, subscription, or keying have
// caught up are dropped silently; Stats classifies the drops. A
// malformed datagram terminates only the channel it targets.
package voice
