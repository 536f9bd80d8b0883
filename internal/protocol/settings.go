package protocol

import (
	"encoding/json"
	"fmt"
)

// Settings is the immutable recognizer configuration serialized once into
// the session-start control message.
type Settings struct {
	Model           string
	LearningOptOut  bool
	ContentType     string
	SampleRateHertz int
	InterimResults  bool
}

type startMessage struct {
	Action         string `json:"action"`
	ContentType    string `json:"content_type"`
	InterimResults bool   `json:"interim_results"`
	Model          string `json:"model,omitempty"`
	LearningOptOut bool   `json:"learning_opt_out,omitempty"`
}

const (
	actionStart = "start"
	actionStop  = "stop"
)

// StartMessage renders the session-start control payload.
func (s Settings) StartMessage() ([]byte, error) {
	contentType := s.ContentType
	if contentType == "" {
		contentType = fmt.Sprintf("audio/l16;rate=%d", s.SampleRateHertz)
	}
	payload, err := json.Marshal(startMessage{
		Action:         actionStart,
		ContentType:    contentType,
		InterimResults: s.InterimResults,
		Model:          s.Model,
		LearningOptOut: s.LearningOptOut,
	})
	if err != nil {
		return nil, fmt.Errorf("serialize start message: %w", err)
	}
	return payload, nil
}

// StopMessage is the fixed session-stop sentinel.
func StopMessage() []byte {
	return []byte(`{"action":"stop"}`)
}
