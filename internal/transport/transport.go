package transport

import (
	"fmt"
	"time"
)

// Handler receives asynchronous connection lifecycle notifications.
// OnDisconnect is called with nil after a locally requested close.
type Handler interface {
	OnConnect()
	OnTextMessage(data []byte)
	OnBinaryMessage(data []byte)
	OnDisconnect(err error)
}

type Transport interface {
	RegisterHandler(h Handler)
	SetHeader(name, value string)
	Connect()
	Disconnect(timeout time.Duration)
	SendText(data []byte) error
	SendBinary(data []byte) error
}

type Factory func() Transport

// DisconnectError describes why the connection ended. HandshakeStatus is
// the HTTP status of a rejected upgrade (0 when the handshake succeeded);
// CloseCode is the websocket close code (0 when none was received).
type DisconnectError struct {
	CloseCode       int
	HandshakeStatus int
	Description     string
}

func (e *DisconnectError) Error() string {
	switch {
	case e.HandshakeStatus != 0:
		return fmt.Sprintf("websocket upgrade rejected with status %d: %s", e.HandshakeStatus, e.Description)
	case e.CloseCode != 0:
		return fmt.Sprintf("connection closed with code %d: %s", e.CloseCode, e.Description)
	default:
		return fmt.Sprintf("connection lost: %s", e.Description)
	}
}
