package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foxseedlab/kikitorin/internal/config"
	"github.com/foxseedlab/kikitorin/internal/metrics"
	"github.com/foxseedlab/kikitorin/internal/protocol"
	"github.com/foxseedlab/kikitorin/internal/token"
	"github.com/foxseedlab/kikitorin/internal/transport"
	"github.com/google/uuid"
)

type Callbacks struct {
	// OnResults receives the latest complete snapshot of the result list
	// after every successful merge, not an incremental diff.
	OnResults func(results []protocol.Result)
	OnFailure func(err error)
}

type Factory func(cb Callbacks) *Session

// Session coordinates one end-to-end transcription interaction: token
// acquisition, bounded reconnect, ordered outbound writes and the merge of
// inbound result updates.
type Session struct {
	cfg    *config.Config
	tokens token.Provider
	tr     transport.Transport
	rec    metrics.Recorder
	cb     Callbacks

	id    string
	queue *writeQueue

	mu         sync.Mutex
	state      State
	retryCount int
	connecting bool
	shutdown   bool
	results    []protocol.Result
}

func New(cfg *config.Config, tokens token.Provider, tr transport.Transport, rec metrics.Recorder, cb Callbacks) *Session {
	if rec == nil {
		rec = metrics.Noop{}
	}
	s := &Session{
		cfg:    cfg,
		tokens: tokens,
		tr:     tr,
		rec:    rec,
		cb:     cb,
		id:     uuid.NewString(),
		state:  StateDisconnected,
	}
	s.queue = newWriteQueue(cfg.QueueLimit, s.handleWriteError, rec.FrameDropped)
	tr.RegisterHandler(s)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Results returns a snapshot of the authoritative result list.
func (s *Session) Results() []protocol.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotResults(s.results)
}

// Connect starts the connect procedure. It is idempotent while a connect
// is already in flight or the session is active.
func (s *Session) Connect() {
	s.mu.Lock()
	if s.shutdown || s.connecting || s.state.IsActive() {
		s.mu.Unlock()
		return
	}
	s.connecting = true
	s.mu.Unlock()
	s.connect()
}

func (s *Session) connect() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	if s.retryCount >= s.cfg.MaxConnectRetries {
		s.connecting = false
		s.mu.Unlock()
		s.rec.Failure(metrics.FailureAuth)
		s.fail(ErrCheckCredentials)
		return
	}
	s.retryCount++
	attempt := s.retryCount
	s.mu.Unlock()

	tok, ok := s.tokens.CurrentToken()
	if !ok {
		go s.refreshAndReconnect()
		return
	}

	slog.Info("connecting to recognizer", "session_id", s.id, "attempt", attempt)
	s.tr.SetHeader("Authorization", "Bearer "+string(tok))
	s.tr.SetHeader("X-Client-Name", s.cfg.ClientName)
	s.rec.ConnectAttempt()
	s.tr.Connect()
}

func (s *Session) refreshAndReconnect() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	exhausted := s.retryCount >= s.cfg.MaxConnectRetries
	s.mu.Unlock()
	if exhausted {
		// no token request once the ceiling is reached; connect reports
		// the terminal failure
		s.connect()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TokenRefreshTimeout)
	defer cancel()
	if err := s.tokens.Refresh(ctx); err != nil {
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
		s.rec.Failure(metrics.FailureToken)
		s.fail(fmt.Errorf("%w: %w", ErrTokenAcquisition, err))
		return
	}
	s.connect()
}

// Start queues the session-start control message built from settings.
func (s *Session) Start(settings protocol.Settings) {
	payload, err := settings.StartMessage()
	if err != nil {
		s.rec.Failure(metrics.FailureProtocol)
		s.fail(err)
		return
	}
	s.queue.Submit(false, func() error {
		return s.tr.SendText(payload)
	})
}

// Stop queues the session-stop sentinel.
func (s *Session) Stop() {
	s.queue.Submit(false, func() error {
		return s.tr.SendText(protocol.StopMessage())
	})
}

// SendAudio queues one binary audio frame. Frames arriving while the
// session is fully disconnected are dropped; frames arriving before the
// transport is ready are buffered by the write queue.
func (s *Session) SendAudio(frame []byte) {
	s.mu.Lock()
	if s.shutdown || (s.state == StateDisconnected && !s.connecting) {
		s.mu.Unlock()
		s.rec.FrameDropped()
		return
	}
	if s.state == StateConnected || s.state == StateListening {
		s.state = StateTranscribing
	}
	s.mu.Unlock()

	// The producer may reuse its buffer before the queue drains.
	data := make([]byte, len(frame))
	copy(data, frame)
	s.queue.Submit(true, func() error {
		if err := s.tr.SendBinary(data); err != nil {
			return err
		}
		s.rec.FrameSent(len(data))
		return nil
	})
}

// Disconnect tears the session down. Safe to call when never connected.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.shutdown || (s.state == StateDisconnected && !s.connecting) {
		s.mu.Unlock()
		return
	}
	s.state = StateDisconnected
	s.connecting = false
	s.shutdown = true
	s.mu.Unlock()

	slog.Info("disconnecting session", "session_id", s.id)
	s.queue.Shutdown()
	s.tr.Disconnect(s.cfg.DisconnectTimeout)
}

func (s *Session) OnConnect() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		// a dial that completed after Disconnect; close it again
		s.tr.Disconnect(s.cfg.DisconnectTimeout)
		return
	}
	s.retryCount = 0
	s.connecting = false
	s.state = StateConnected
	s.mu.Unlock()

	slog.Info("session connected", "session_id", s.id)
	s.rec.Connected()
	s.queue.Release()
}

func (s *Session) OnTextMessage(data []byte) {
	msg, err := protocol.Classify(data)
	if err != nil {
		s.rec.Failure(metrics.FailureProtocol)
		s.fail(fmt.Errorf("%w: %w", ErrUnreadableMessage, err))
		return
	}
	switch m := msg.(type) {
	case protocol.StateMessage:
		s.handleServerState(m)
	case protocol.ResultWrapper:
		s.handleResults(m)
	case protocol.ServerError:
		s.handleServerError(m)
	}
}

func (s *Session) OnBinaryMessage(_ []byte) {
	// the recognizer never sends binary frames
}

func (s *Session) OnDisconnect(err error) {
	s.mu.Lock()
	if s.shutdown {
		s.state = StateDisconnected
		s.mu.Unlock()
		return
	}
	s.state = StateDisconnected
	s.mu.Unlock()
	s.queue.Hold()

	switch {
	case isCleanClose(err):
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
		slog.Info("server closed the connection", "session_id", s.id)
	case isAuthFailure(err):
		slog.Warn("authentication rejected; refreshing token and reconnecting", "session_id", s.id, "error", err)
		s.rec.Failure(metrics.FailureAuth)
		s.tokens.Invalidate()
		s.mu.Lock()
		s.connecting = true
		s.mu.Unlock()
		go s.refreshAndReconnect()
	default:
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
		s.rec.Failure(metrics.FailureTransport)
		s.fail(err)
	}
}

func (s *Session) handleServerState(msg protocol.StateMessage) {
	if msg.State != protocol.StateListening {
		slog.Debug("ignoring unknown server state", "session_id", s.id, "state", msg.State)
		return
	}
	s.mu.Lock()
	if s.state.IsActive() {
		s.state = StateListening
	}
	s.mu.Unlock()
}

func (s *Session) handleResults(msg protocol.ResultWrapper) {
	s.mu.Lock()
	merged, err := mergeResults(s.results, msg.ResultIndex, msg.Results)
	if err != nil {
		s.mu.Unlock()
		s.rec.Failure(metrics.FailureProtocol)
		s.fail(err)
		return
	}
	s.results = merged
	snapshot := snapshotResults(merged)
	s.mu.Unlock()

	s.rec.ResultsMerged(len(msg.Results))
	if s.cb.OnResults != nil {
		s.cb.OnResults(snapshot)
	}
}

// handleServerError demotes the session to Listening and surfaces the
// error text; a server-reported error is recoverable and never forces a
// disconnect.
func (s *Session) handleServerError(msg protocol.ServerError) {
	s.mu.Lock()
	if s.state.IsActive() {
		s.state = StateListening
	}
	s.mu.Unlock()

	s.rec.Failure(metrics.FailureServer)
	s.fail(&RemoteError{Message: msg.Message})
}

func (s *Session) handleWriteError(err error) {
	s.rec.Failure(metrics.FailureTransport)
	s.fail(fmt.Errorf("write to recognizer failed: %w", err))
}

func (s *Session) fail(err error) {
	slog.Error("session failure", "session_id", s.id, "error", err)
	if s.cb.OnFailure != nil {
		s.cb.OnFailure(err)
	}
}

func snapshotResults(results []protocol.Result) []protocol.Result {
	snapshot := make([]protocol.Result, len(results))
	copy(snapshot, results)
	return snapshot
}
