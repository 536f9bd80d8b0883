package session

// State is the session connection state.
//
// Disconnected → Connected on a successful transport connect.
// Connected/Listening → Transcribing when the first audio frame is
// accepted. Transcribing → Listening when the recognizer reports it is
// ready for the next utterance. Any state → Disconnected on transport
// disconnect or retry exhaustion.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateListening
	StateTranscribing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateListening:
		return "listening"
	case StateTranscribing:
		return "transcribing"
	default:
		return "unknown"
	}
}

// IsActive reports whether a transport connection is currently open.
func (s State) IsActive() bool {
	return s != StateDisconnected
}
