package transport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/kikitorin/internal/transport"
	"github.com/gorilla/websocket"
)

type captureHandler struct {
	mu          sync.Mutex
	connects    int
	texts       [][]byte
	binaries    [][]byte
	disconnects []error
}

func (h *captureHandler) OnConnect() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connects++
}

func (h *captureHandler) OnTextMessage(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.texts = append(h.texts, data)
}

func (h *captureHandler) OnBinaryMessage(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.binaries = append(h.binaries, data)
}

func (h *captureHandler) OnDisconnect(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnects = append(h.disconnects, err)
}

func (h *captureHandler) connectCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connects
}

func (h *captureHandler) textMessages() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]byte, len(h.texts))
	copy(out, h.texts)
	return out
}

func (h *captureHandler) disconnectErrs() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]error, len(h.disconnects))
	copy(out, h.disconnects)
	return out
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestConnect_RejectedUpgradeReportsHandshakeStatus(t *testing.T) {
	authCh := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCh <- r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tr := NewWebsocketTransport(wsURL(server))
	h := &captureHandler{}
	tr.RegisterHandler(h)
	tr.SetHeader("Authorization", "Bearer expired")
	tr.Connect()

	waitUntil(t, 2*time.Second, func() bool { return len(h.disconnectErrs()) == 1 }, "expected a disconnect notification")
	if got := <-authCh; got != "Bearer expired" {
		t.Fatalf("expected the auth header on the upgrade request, got %q", got)
	}
	if h.connectCount() != 0 {
		t.Fatalf("expected no connect notification, got %d", h.connectCount())
	}
	var de *transport.DisconnectError
	if !errors.As(h.disconnectErrs()[0], &de) {
		t.Fatalf("expected a DisconnectError, got %v", h.disconnectErrs()[0])
	}
	if de.HandshakeStatus != http.StatusUnauthorized {
		t.Fatalf("expected handshake status 401, got %d", de.HandshakeStatus)
	}
}

func TestReadPump_ServerCloseReportsCloseCode(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() {
			_ = conn.Close()
		}()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"state":"listening"}`)); err != nil {
			return
		}
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(4000, "session rejected"), deadline)
		_ = conn.SetReadDeadline(deadline)
		// wait for the client's close response so the frame is delivered
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	tr := NewWebsocketTransport(wsURL(server))
	h := &captureHandler{}
	tr.RegisterHandler(h)
	tr.Connect()

	waitUntil(t, 2*time.Second, func() bool { return len(h.disconnectErrs()) == 1 }, "expected a disconnect notification")
	if h.connectCount() != 1 {
		t.Fatalf("expected one connect notification, got %d", h.connectCount())
	}
	texts := h.textMessages()
	if len(texts) != 1 || string(texts[0]) != `{"state":"listening"}` {
		t.Fatalf("unexpected text messages: %q", texts)
	}
	var de *transport.DisconnectError
	if !errors.As(h.disconnectErrs()[0], &de) {
		t.Fatalf("expected a DisconnectError, got %v", h.disconnectErrs()[0])
	}
	if de.CloseCode != 4000 {
		t.Fatalf("expected close code 4000, got %d", de.CloseCode)
	}
	if de.Description != "session rejected" {
		t.Fatalf("unexpected close description: %q", de.Description)
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(message)
}
