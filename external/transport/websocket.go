package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/foxseedlab/kikitorin/internal/transport"
	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 15 * time.Second
	writeTimeout     = 10 * time.Second
)

type WebsocketTransport struct {
	target string
	dialer *websocket.Dialer

	mu         sync.Mutex
	headers    http.Header
	handler    transport.Handler
	conn       *websocket.Conn
	localClose bool

	// writeMu keeps concurrent SendText/SendBinary calls off the same
	// gorilla connection; the library allows one writer at a time.
	writeMu sync.Mutex
}

func NewWebsocketTransport(target string) transport.Transport {
	return &WebsocketTransport{
		target:  target,
		dialer:  &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		headers: http.Header{},
	}
}

func (t *WebsocketTransport) RegisterHandler(h transport.Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

func (t *WebsocketTransport) SetHeader(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.headers.Set(name, value)
}

func (t *WebsocketTransport) Connect() {
	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return
	}
	t.localClose = false
	handler := t.handler
	headers := t.headers.Clone()
	t.mu.Unlock()
	if handler == nil {
		slog.Error("websocket connect requested without a registered handler", "target", t.target)
		return
	}
	go t.dial(headers, handler)
}

func (t *WebsocketTransport) dial(headers http.Header, handler transport.Handler) {
	conn, resp, err := t.dialer.Dial(t.target, headers)
	if resp != nil && resp.Body != nil {
		defer func() {
			_ = resp.Body.Close()
		}()
	}
	if err != nil {
		de := &transport.DisconnectError{Description: err.Error()}
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil {
			de.HandshakeStatus = resp.StatusCode
		}
		handler.OnDisconnect(de)
		return
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	handler.OnConnect()
	t.readPump(conn, handler)
}

func (t *WebsocketTransport) readPump(conn *websocket.Conn, handler transport.Handler) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			local := t.localClose
			t.conn = nil
			t.mu.Unlock()
			_ = conn.Close()
			if local {
				handler.OnDisconnect(nil)
				return
			}
			de := &transport.DisconnectError{Description: err.Error()}
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				de.CloseCode = ce.Code
				de.Description = ce.Text
			}
			handler.OnDisconnect(de)
			return
		}
		switch msgType {
		case websocket.TextMessage:
			handler.OnTextMessage(data)
		case websocket.BinaryMessage:
			handler.OnBinaryMessage(data)
		}
	}
}

func (t *WebsocketTransport) SendText(data []byte) error {
	return t.write(websocket.TextMessage, data)
}

func (t *WebsocketTransport) SendBinary(data []byte) error {
	return t.write(websocket.BinaryMessage, data)
}

func (t *WebsocketTransport) write(msgType int, data []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return errors.New("websocket is not connected")
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(msgType, data)
}

func (t *WebsocketTransport) Disconnect(timeout time.Duration) {
	t.mu.Lock()
	conn := t.conn
	t.localClose = true
	t.mu.Unlock()
	if conn == nil {
		return
	}
	deadline := time.Now().Add(timeout)
	t.writeMu.Lock()
	err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	t.writeMu.Unlock()
	if err != nil {
		_ = conn.Close()
		return
	}
	// Give the server until the deadline to acknowledge; the read pump
	// observes the close and reports a local disconnect.
	_ = conn.SetReadDeadline(deadline)
}
