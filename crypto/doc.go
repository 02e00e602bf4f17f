// Package crypto implements the session cipher for the voice receive
// pipeline.
//
// Voice datagrams are sealed with XSalsa20-Poly1305 (NaCl secretbox)
// under a session-wide secret key. The three supported framings differ
// only in where the nonce travels:
//
//   - ModeNormal: the 12-byte transport header doubles as the nonce
//   - ModeSuffix: a full 24-byte random nonce trails the ciphertext
//   - ModeLite: a 4-byte counter trails the ciphertext
//
// A Context pairs the negotiated mode with the secret key and owns the
// nonce scratch buffer reused across Open calls. The session layer
// replaces the whole Context when keys rotate.
//
// Example:
//
//	ctx, err := crypto.NewContext(crypto.ModeLite, secretKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plain, err := ctx.Open(datagram)
//	if err != nil {
//	    // tampered, misframed, or truncated datagram
//	}
package crypto
