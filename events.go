package voice

// Signaling event vocabulary consumed by the receiver. The signaling
// collaborator decodes its wire messages into these shapes and hands
// them to Receiver.HandleEvent.

// ConnectUpdate announces or refreshes a participant's source id
// binding. Sent when a participant joins and again whenever their
// speaking state rebinds them to a new source id.
type ConnectUpdate struct {
	// UserID is the participant's stable logical identity.
	UserID string `json:"user_id"`

	// AudioSSRC is the source id of the participant's primary audio
	// stream.
	AudioSSRC uint32 `json:"audio_ssrc"`

	// VideoSSRC is the source id of the participant's secondary
	// stream; zero when the participant has none.
	VideoSSRC uint32 `json:"video_ssrc"`
}

// Disconnect announces that a participant left the session and their
// binding must be forgotten.
type Disconnect struct {
	UserID string `json:"user_id"`
}
