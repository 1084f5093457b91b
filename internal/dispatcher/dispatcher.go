package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrClosed is returned when dispatching to async handlers after Close.
var ErrClosed = errors.New("dispatcher closed")

// Event is a pointer interaction raised by the drawing surface.
type Event struct {
	Command string
	// Key identifies the source of the event, e.g. "point:3". Deferred
	// handlers keep one pending call per command and key.
	Key       string
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
	delay      time.Duration
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Deferred runs the handler after delay on a timer goroutine. A new event with
// the same key replaces a call that is still pending, and Cancel drops it.
func Deferred(delay time.Duration) Option {
	return func(c *config) {
		c.delay = delay
	}
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	cancelled metric.Int64Counter

	// Track buffers for gauge callback
	mu      sync.RWMutex
	buffers map[string]chan Event
	pending map[string]*time.Timer
	closed  bool
	done    chan struct{}
	workers sync.WaitGroup
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// New creates a new Dispatcher with the given logger. A nil logger discards.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan Event),
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
		logger:   logger,
	}

	// Get meter from global OTel provider (returns no-op if not configured)
	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of events in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for cmd, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("command", cmd)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	d.cancelled, err = m.Int64Counter(
		"dispatcher.events.cancelled",
		metric.WithDescription("Total deferred events cancelled or superseded before running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cancelled counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(command, cfg.bufferSize, cfg.blocking, handler)
	} else if cfg.delay > 0 {
		handler = d.withDelay(command, cfg.delay, handler)
	}

	if cfg.logged {
		handler = d.withLogging(command, handler)
	}

	d.handlers[command] = handler
}

// Dispatch routes an event to its registered handler.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(e)
}

func (d *Dispatcher) hasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

// Cancel drops a deferred call for command and key that has not started yet.
// It reports whether a pending call was dropped.
func (d *Dispatcher) Cancel(command, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := pendingID(command, key)
	t, ok := d.pending[id]
	if !ok {
		return false
	}
	// a timer that already fired finds itself gone from pending and returns
	delete(d.pending, id)
	t.Stop()
	d.cancelled.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", command)))
	return true
}

// Close drops pending deferred calls, then waits until every buffered queue
// has been drained and every deferred call already running has returned.
// Async handlers return ErrClosed afterwards.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for id, t := range d.pending {
		t.Stop()
		delete(d.pending, id)
	}
	close(d.done)
	d.mu.Unlock()

	d.workers.Wait()
}

func (d *Dispatcher) withBuffer(command string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)

	d.mu.Lock()
	d.buffers[command] = buffer
	d.mu.Unlock()

	cmdAttr := attribute.String("command", command)
	handle := func(e Event) {
		if _, err := h(e); err != nil {
			d.logger.Error("queued event failed", "command", command, "error", err)
		}
		d.processed.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
	}

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for {
			select {
			case e := <-buffer:
				handle(e)
			case <-d.done:
				// drain what was queued before Close
				for {
					select {
					case e := <-buffer:
						handle(e)
					default:
						return
					}
				}
			}
		}
	}()

	return func(e Event) (any, error) {
		d.mu.RLock()
		if d.closed {
			d.mu.RUnlock()
			return nil, ErrClosed
		}
		select {
		case buffer <- e:
			d.mu.RUnlock()
			return "queued", nil
		default:
		}
		d.mu.RUnlock()

		if !blocking {
			d.dropped.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
			return nil, fmt.Errorf("queue full: %s", command)
		}

		// wait for room without holding the lock so Close can proceed
		select {
		case buffer <- e:
			return "queued", nil
		case <-d.done:
			return nil, ErrClosed
		}
	}
}

func (d *Dispatcher) withDelay(command string, delay time.Duration, h HandlerFunc) HandlerFunc {
	cmdAttr := attribute.String("command", command)

	return func(e Event) (any, error) {
		id := pendingID(command, e.Key)

		d.mu.Lock()
		defer d.mu.Unlock()

		if d.closed {
			return nil, ErrClosed
		}

		if prev, ok := d.pending[id]; ok {
			prev.Stop()
			d.cancelled.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
		}

		var t *time.Timer
		t = time.AfterFunc(delay, func() {
			d.mu.Lock()
			if d.closed || d.pending[id] != t {
				d.mu.Unlock()
				return
			}
			delete(d.pending, id)
			d.workers.Add(1)
			d.mu.Unlock()
			defer d.workers.Done()

			if _, err := h(e); err != nil {
				d.logger.Error("deferred event failed", "command", command, "key", e.Key, "error", err)
			}
			d.processed.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
		})
		d.pending[id] = t

		return "deferred", nil
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "key", e.Key)

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}

func pendingID(command, key string) string {
	return command + "|" + key
}
