package protocol

// Word carries word-level timing and confidence for one recognized word.
// Times are offsets in seconds from the start of the audio stream.
type Word struct {
	Word       string  `json:"word"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Confidence float64 `json:"confidence"`
}

// Result is one utterance segment. A non-final result may be replaced in
// place by a later update at the same index.
type Result struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Final      bool    `json:"final"`
	Words      []Word  `json:"words,omitempty"`
}

// Inbound is the tagged union of server message shapes.
type Inbound interface {
	inbound()
}

// ResultWrapper carries a contiguous run of results starting at
// ResultIndex in the authoritative result list.
type ResultWrapper struct {
	ResultIndex int      `json:"result_index"`
	Results     []Result `json:"results"`
}

// StateMessage signals a server-side listening/processing transition.
type StateMessage struct {
	State string `json:"state"`
}

// ServerError is a recoverable error reported inside the stream.
type ServerError struct {
	Message string `json:"error"`
}

func (ResultWrapper) inbound() {}
func (StateMessage) inbound()  {}
func (ServerError) inbound()   {}

// StateListening is the state value the recognizer sends when it finished
// the previous utterance and is ready for the next one.
const StateListening = "listening"
