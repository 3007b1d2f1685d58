// Package async tracks the status of one kind of outstanding upstream call.
//
// Every Invoke takes a new sequence number. When a call resolves, its outcome is
// applied only if no newer Invoke (or Reset) happened in the meantime and the
// owning context is still alive; stale outcomes are dropped.
package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// DefaultTimeout bounds a single call.
const DefaultTimeout = 60 * time.Second

// TimeoutMessage is reported when a call exceeds its timeout.
const TimeoutMessage = "The request timed out. Please try again."

// Func performs the upstream call.
type Func[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Snapshot is the externally visible state of a tracker.
type Snapshot[Res any] struct {
	Status     Status `json:"status"`
	LastError  string `json:"lastError,omitempty"`
	LastResult *Res   `json:"lastResult,omitempty"`
}

// Ticket identifies one Invoke. Done is closed once the outcome has been
// applied or dropped.
type Ticket struct {
	Seq  uint64
	done chan struct{}
}

func (t Ticket) Done() <-chan struct{} { return t.done }

type options struct {
	timeout time.Duration
	locker  sync.Locker
	message func(error) string
}

type Option func(*options)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLocker makes completions run while holding l. Invoke must then be called
// with l already held; completions acquire it themselves.
func WithLocker(l sync.Locker) Option {
	return func(o *options) { o.locker = l }
}

// WithErrorMessage maps call errors to the text stored in LastError.
func WithErrorMessage(fn func(error) string) Option {
	return func(o *options) { o.message = fn }
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// Tracker runs calls of one kind and records their status.
type Tracker[Req, Res any] struct {
	ctx  context.Context
	fn   Func[Req, Res]
	opts options
	wg   sync.WaitGroup

	mu      sync.Mutex
	seq     uint64
	status  Status
	lastErr string
	lastRes *Res
}

// New creates an idle tracker. Calls are bound to ctx: once it is cancelled no
// further outcome is applied.
func New[Req, Res any](ctx context.Context, fn Func[Req, Res], opts ...Option) *Tracker[Req, Res] {
	o := options{
		timeout: DefaultTimeout,
		locker:  noLock{},
		message: func(err error) string { return err.Error() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tracker[Req, Res]{ctx: ctx, fn: fn, opts: o, status: StatusIdle}
}

// Invoke starts a call and marks the tracker pending. done, if non-nil, runs
// with the outcome of this call only when it is still the latest one.
func (t *Tracker[Req, Res]) Invoke(req Req, done func(Res, error)) Ticket {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.status = StatusPending
	t.lastErr = ""
	t.mu.Unlock()

	ticket := Ticket{Seq: seq, done: make(chan struct{})}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(ticket.done)

		ctx, cancel := context.WithTimeout(t.ctx, t.opts.timeout)
		res, err := t.fn(ctx, req)
		timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
		cancel()

		t.complete(seq, res, err, timedOut, done)
	}()
	return ticket
}

func (t *Tracker[Req, Res]) complete(seq uint64, res Res, err error, timedOut bool, done func(Res, error)) {
	t.opts.locker.Lock()
	defer t.opts.locker.Unlock()

	t.mu.Lock()
	if seq != t.seq || t.ctx.Err() != nil {
		t.mu.Unlock()
		return
	}
	switch {
	case timedOut && err != nil:
		t.status = StatusError
		t.lastErr = TimeoutMessage
	case err != nil:
		t.status = StatusError
		t.lastErr = t.opts.message(err)
	default:
		t.status = StatusSuccess
		r := res
		t.lastRes = &r
	}
	t.mu.Unlock()

	if done != nil {
		done(res, err)
	}
}

// Reset returns the tracker to idle and drops any in-flight outcome.
func (t *Tracker[Req, Res]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.status = StatusIdle
	t.lastErr = ""
	t.lastRes = nil
}

// Pending reports whether the latest call has not resolved yet.
func (t *Tracker[Req, Res]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status == StatusPending
}

func (t *Tracker[Req, Res]) State() Snapshot[Res] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot[Res]{Status: t.status, LastError: t.lastErr, LastResult: t.lastRes}
}

// Wait blocks until every started call has finished. Callers holding the
// WithLocker lock must release it first.
func (t *Tracker[Req, Res]) Wait() {
	t.wg.Wait()
}
