package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/devlink/internal/clientdata"
	"github.com/roach88/devlink/internal/protocol"
)

// Observer is called from the Run goroutine after each batch is processed.
// Observers must not block; they run before the next event is dequeued.
type Observer func(seq int64, res clientdata.Result)

// Engine is the single-writer event loop around one ClientData.
//
// Thread-safety model:
//   - Submit, SetLogOnly, Do, Stop: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// CRITICAL: the ClientData is only touched from the Run goroutine. Code
// outside the engine reaches it through Do.
type Engine struct {
	data      *clientdata.ClientData
	clock     *Clock
	queue     *eventQueue
	observers []Observer
	logger    *slog.Logger

	stopOnce sync.Once
	stopped  chan struct{} // closed when Run returns
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithObserver registers an observer for processed batches.
// Observers run in registration order.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine that owns data. After New, data must only be
// accessed through the engine.
func New(data *clientdata.ClientData, opts ...EngineOption) *Engine {
	e := &Engine{
		data:    data,
		clock:   NewClock(),
		queue:   newEventQueue(),
		logger:  slog.Default(),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit enqueues a batch for AddData.
// Returns false if the engine has been stopped.
func (e *Engine) Submit(batch []protocol.Msg) bool {
	return e.queue.Enqueue(Event{Type: EventTypeBatch, Batch: batch})
}

// SetLogOnly enqueues a mode switch. It takes effect after every batch
// submitted before it.
// Returns false if the engine has been stopped.
func (e *Engine) SetLogOnly(on bool) bool {
	return e.queue.Enqueue(Event{Type: EventTypeMode, LogOnly: on})
}

// Do runs fn on the Run goroutine and waits for it to return.
//
// fn sees every event enqueued before it fully applied. A panic in fn is
// recovered and returned as a CALL_PANICKED RuntimeError; the loop keeps
// running. Do returns ctx.Err() if ctx ends first, in which case fn may still
// run later.
func (e *Engine) Do(ctx context.Context, fn func(*clientdata.ClientData)) error {
	done := make(chan error, 1)
	if !e.queue.Enqueue(Event{Type: EventTypeCall, call: fn, done: done}) {
		return newStoppedError()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		// Run may have processed the call just before returning
		select {
		case err := <-done:
			return err
		default:
			return newStoppedError()
		}
	}
}

// Run starts the single-writer event loop.
// Blocks until ctx is cancelled or Stop() is called. After Stop, events
// already queued are processed before Run returns nil.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (e *Engine) Run(ctx context.Context) error {
	defer e.stopOnce.Do(func() { close(e.stopped) })
	e.logger.Info("engine starting", "device_id", e.data.DeviceID())

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			if err := e.processEvent(event); err != nil {
				e.logger.Error("event processing failed", "event", event.Type, "error", err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed once the queue is closed
			if e.isClosedAndEmpty() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

func (e *Engine) isClosedAndEmpty() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed && len(e.queue.events) == 0
}

// Stop closes the event queue. Run returns once the queue drains.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Done returns a channel closed when Run has returned.
func (e *Engine) Done() <-chan struct{} {
	return e.stopped
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// processEvent routes an event to its handler.
// CRITICAL: Called only from the Run goroutine.
func (e *Engine) processEvent(event Event) error {
	switch event.Type {
	case EventTypeBatch:
		e.processBatch(event.Batch)
		return nil

	case EventTypeMode:
		e.data.LogOnlyRawMessages(event.LogOnly)
		return nil

	case EventTypeCall:
		if event.call == nil {
			event.done <- nil
			return fmt.Errorf("call event missing function")
		}
		err := e.invoke(event.call)
		event.done <- err
		return err

	default:
		return fmt.Errorf("unknown event type: %d", event.Type)
	}
}

func (e *Engine) processBatch(batch []protocol.Msg) {
	res := e.data.AddData(batch)
	seq := e.clock.Next()

	e.logger.Debug("batch processed",
		"seq", seq,
		"messages", len(batch),
		"applied", res.Count(clientdata.OutcomeApplied),
		"logged", res.Count(clientdata.OutcomeLogged),
		"violations", res.Count(clientdata.OutcomeViolation),
	)

	for _, o := range e.observers {
		o(seq, res)
	}
}

func (e *Engine) invoke(fn func(*clientdata.ClientData)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	fn(e.data)
	return nil
}
