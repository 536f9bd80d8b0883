package session

import "sync"

type queueOp struct {
	run   func() error
	audio bool
}

// writeQueue serializes outbound control and audio operations. It starts
// held: everything submitted before the transport is ready is buffered.
// Once released it drains strictly in submission order with a single
// in-flight operation, because protocol framing is order-sensitive.
type writeQueue struct {
	mu       sync.Mutex
	held     bool
	draining bool
	closed   bool
	limit    int
	ops      []queueOp
	onError  func(error)
	onDrop   func()
}

func newWriteQueue(limit int, onError func(error), onDrop func()) *writeQueue {
	return &writeQueue{
		held:    true,
		limit:   limit,
		onError: onError,
		onDrop:  onDrop,
	}
}

func (q *writeQueue) Submit(audio bool, run func() error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if len(q.ops) >= q.limit && !q.makeRoomLocked(audio) {
		return
	}
	q.ops = append(q.ops, queueOp{run: run, audio: audio})
	q.maybeDrainLocked()
}

// makeRoomLocked evicts the oldest buffered audio operation. Control
// messages are never evicted; when only control messages are buffered an
// incoming audio frame is dropped instead and an incoming control message
// is admitted past the limit.
func (q *writeQueue) makeRoomLocked(incomingAudio bool) bool {
	for i, op := range q.ops {
		if op.audio {
			q.ops = append(q.ops[:i], q.ops[i+1:]...)
			if q.onDrop != nil {
				q.onDrop()
			}
			return true
		}
	}
	if incomingAudio {
		if q.onDrop != nil {
			q.onDrop()
		}
		return false
	}
	return true
}

// Release lets buffered and subsequent operations execute in FIFO order.
func (q *writeQueue) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.held = false
	q.maybeDrainLocked()
}

// Hold pauses execution; buffered operations survive until the next
// Release. Used across reconnect cycles.
func (q *writeQueue) Hold() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.held = true
}

// Shutdown discards everything buffered and rejects future submissions.
func (q *writeQueue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.held = true
	q.closed = true
	q.ops = nil
}

func (q *writeQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

func (q *writeQueue) maybeDrainLocked() {
	if q.held || q.draining || len(q.ops) == 0 {
		return
	}
	q.draining = true
	go q.drain()
}

func (q *writeQueue) drain() {
	for {
		q.mu.Lock()
		if q.held || len(q.ops) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		op := q.ops[0]
		q.ops = q.ops[1:]
		q.mu.Unlock()

		// A failed write is reported but does not halt the queue.
		if err := op.run(); err != nil && q.onError != nil {
			q.onError(err)
		}
	}
}
