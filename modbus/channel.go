package modbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fossabot/rodbus/internal/logging"
)

// defaultQueueCapacity bounds the number of transactions waiting for the
// transport task before enqueueing applies backpressure.
const defaultQueueCapacity = 16

// requestQueue is the shared outbound queue between any number of session
// handles (producers) and the channel's single transport task (consumer).
type requestQueue struct {
	requests chan transaction
	shutdown chan struct{} // closed after the consumer has failed all pending work
}

func newRequestQueue(capacity int) *requestQueue {
	return &requestQueue{
		requests: make(chan transaction, capacity),
		shutdown: make(chan struct{}),
	}
}

// enqueue places tr on the queue, or reports ErrShutdown if the consumer is
// gone. Suspends only when the queue is full.
func (q *requestQueue) enqueue(ctx context.Context, tr transaction) error {
	select {
	case <-q.shutdown:
		return ErrShutdown
	default:
	}

	select {
	case q.requests <- tr:
		return nil
	case <-q.shutdown:
		return ErrShutdown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await waits for the transaction's completion signal. A result the consumer
// delivered just before tearing down is still returned; only a genuinely
// unresolved transaction reports ErrShutdown.
func await[T any](ctx context.Context, q *requestQueue, done <-chan result[T]) (T, error) {
	var zero T
	select {
	case res := <-done:
		return res.value, res.err
	case <-q.shutdown:
		select {
		case res := <-done:
			return res.value, res.err
		default:
			return zero, ErrShutdown
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Option configures a Channel.
type Option func(*Channel)

// WithQueueCapacity sets the outbound queue depth.
func WithQueueCapacity(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.queueCapacity = n
		}
	}
}

// WithReconnectDelay sets the minimum wait between connection attempts after
// a failure. Transactions that arrive during the wait fail immediately with
// the connect error rather than piling up.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Channel) {
		c.reconnectDelay = d
	}
}

// Channel owns the connection to one Modbus endpoint and the single
// transport task consuming the request queue. Create sessions from it to
// issue requests.
type Channel struct {
	endpoint       string
	dial           dialFunc
	queue          *requestQueue
	queueCapacity  int
	reconnectDelay time.Duration

	quit      chan struct{}
	closeOnce sync.Once
}

// NewChannel opens a channel to the given endpoint and starts its transport
// task. The connection itself is established lazily, on the first request.
func NewChannel(endpoint string, opts ...Option) (*Channel, error) {
	dial, err := newDialer(endpoint)
	if err != nil {
		return nil, err
	}

	c := &Channel{
		endpoint:       endpoint,
		dial:           dial,
		queueCapacity:  defaultQueueCapacity,
		reconnectDelay: time.Second,
		quit:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.queue = newRequestQueue(c.queueCapacity)

	go c.run()
	return c, nil
}

// Session creates a session handle addressing unit with the given response
// timeout. Handles are values; copying one shares the channel's queue.
func (c *Channel) Session(unit UnitID, timeout time.Duration) Session {
	return Session{unit: unit, timeout: timeout, queue: c.queue}
}

// Close stops the transport task. Every pending and future call on sessions
// of this channel fails with ErrShutdown.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
	return nil
}

// run is the transport task: the sole consumer of the request queue. It
// serializes each transaction onto the wire and resolves its completion
// signal with the paired response or an error.
func (c *Channel) run() {
	defer c.teardown()

	var conn frameConn
	var txID uint16
	var lastConnectErr error
	var nextAttempt time.Time

	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	for {
		var tr transaction
		select {
		case <-c.quit:
			return
		case tr = <-c.queue.requests:
		}

		if conn == nil {
			if !nextAttempt.IsZero() && time.Now().Before(nextAttempt) {
				// Still inside the reconnect delay window.
				tr.fail(lastConnectErr)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), tr.responseTimeout())
			newConn, err := c.dial(ctx)
			cancel()
			if err != nil {
				logging.Warn("Connection attempt failed",
					zap.String("endpoint", c.endpoint),
					zap.Error(err),
				)
				lastConnectErr = err
				nextAttempt = time.Now().Add(c.reconnectDelay)
				tr.fail(err)
				continue
			}
			logging.Info("Connected to endpoint", zap.String("endpoint", c.endpoint))
			conn = newConn
			nextAttempt = time.Time{}
		}

		txID++
		pdu, err := c.execute(conn, txID, tr)
		if err != nil {
			logging.Warn("Transaction failed, dropping connection",
				zap.String("endpoint", c.endpoint),
				zap.Uint16("tx_id", txID),
				zap.Error(err),
			)
			conn.Close()
			conn = nil
			nextAttempt = time.Time{}
			tr.fail(err)
			continue
		}
		tr.resolve(pdu)
	}
}

// execute writes one request frame and reads frames until the paired
// response arrives or the transaction's timeout hint expires.
func (c *Channel) execute(conn frameConn, txID uint16, tr transaction) ([]byte, error) {
	adu := buildMBAP(txID, tr.unitID(), tr.requestPDU())
	logging.Debug("Sending request",
		zap.Uint16("tx_id", txID),
		zap.Uint8("unit", uint8(tr.unitID())),
		zap.String("adu", logging.Hex(adu)),
	)

	if err := conn.SetDeadline(time.Now().Add(tr.responseTimeout())); err != nil {
		return nil, err
	}
	if err := conn.WriteFrame(adu); err != nil {
		return nil, err
	}

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			return nil, err
		}
		if frame.txID != txID || frame.unit != tr.unitID() {
			// A stale response to a request that already timed out.
			logging.Debug("Discarding unmatched response",
				zap.Uint16("got_tx_id", frame.txID),
				zap.Uint16("want_tx_id", txID),
			)
			continue
		}
		logging.Debug("Received response",
			zap.Uint16("tx_id", txID),
			zap.String("pdu", logging.Hex(frame.pdu)),
		)
		return frame.pdu, nil
	}
}

// teardown fails everything still queued, then publishes the shutdown so
// current and future callers observe ErrShutdown instead of hanging.
func (c *Channel) teardown() {
	for {
		select {
		case tr := <-c.queue.requests:
			tr.fail(ErrShutdown)
		default:
			close(c.queue.shutdown)
			logging.Info("Channel shut down", zap.String("endpoint", c.endpoint))
			return
		}
	}
}
