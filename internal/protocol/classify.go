package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownShape = errors.New("message matches no known shape")

type envelope struct {
	State       *string  `json:"state"`
	ResultIndex *int     `json:"result_index"`
	Results     []Result `json:"results"`
	Error       *string  `json:"error"`
}

// Classify parses an inbound text message into one of the protocol shapes.
// Priority order when a message matches several shapes: state transition,
// then result wrapper, then server error.
//
// Any string is accepted as a state value: a state the session does not
// know is ignored downstream rather than reported as an unreadable
// message, so new server states do not break older clients.
func Classify(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed server message: %w", err)
	}
	switch {
	case env.State != nil:
		return StateMessage{State: *env.State}, nil
	case env.ResultIndex != nil:
		return ResultWrapper{ResultIndex: *env.ResultIndex, Results: env.Results}, nil
	case env.Error != nil:
		return ServerError{Message: *env.Error}, nil
	default:
		return nil, ErrUnknownShape
	}
}
