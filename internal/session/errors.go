package session

import (
	"errors"

	"github.com/foxseedlab/kikitorin/internal/transport"
)

var (
	ErrCheckCredentials  = errors.New("invalid websocket upgrade: check credentials")
	ErrTokenAcquisition  = errors.New("failed to obtain bearer token")
	ErrUnreadableMessage = errors.New("could not interpret server message")
	ErrResultGap         = errors.New("result index beyond current transcript length")
)

// RemoteError carries an error string the recognizer reported inside the
// stream. The session stays connected when one arrives.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "recognizer reported error: " + e.Message
}

const (
	closeCodeNormal       = 1000
	closeCodeGoingAway    = 1001
	closeCodeUnauthorized = 3000
)

func isAuthFailure(err error) bool {
	var de *transport.DisconnectError
	if !errors.As(err, &de) {
		return false
	}
	if de.HandshakeStatus == 401 || de.HandshakeStatus == 403 {
		return true
	}
	return de.CloseCode == closeCodeUnauthorized
}

func isCleanClose(err error) bool {
	if err == nil {
		return true
	}
	var de *transport.DisconnectError
	if !errors.As(err, &de) {
		return false
	}
	return de.CloseCode == closeCodeNormal || de.CloseCode == closeCodeGoingAway
}
