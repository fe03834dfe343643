package analysis

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// outcome is what a finished submission contributes to the state.
type outcome struct {
	phase   Phase
	message string
	result  *Result
}

type submitFunc func(ctx context.Context, t Trigger) outcome

// Flow owns one viewer's loading/error/data state. A completion is applied only when its
// generation is still current, so superseded submissions can never overwrite newer state.
type Flow struct {
	submit  submitFunc
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu          sync.Mutex
	last        Trigger
	state       State
	cancel      context.CancelFunc
	subscribers map[int]chan State
	nextSub     int
	closed      bool
}

func newFlow(submit submitFunc, timeout time.Duration, now func() time.Time, logger *slog.Logger) *Flow {
	if now == nil {
		now = time.Now
	}
	return &Flow{
		submit:      submit,
		timeout:     timeout,
		now:         now,
		logger:      logger,
		state:       State{Phase: PhaseIdle},
		subscribers: make(map[int]chan State),
	}
}

// Trigger starts a submission for t unless t is incomplete or equals the last accepted
// trigger. It reports whether a submission was started.
func (f *Flow) Trigger(t Trigger) bool {
	if !t.Complete() {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || t == f.last {
		return false
	}
	if f.cancel != nil {
		f.cancel()
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if f.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	f.last = t
	f.cancel = cancel
	f.state = State{
		Phase:      PhaseLoading,
		Loading:    true,
		Generation: f.state.Generation + 1,
		StartedAt:  f.now().UTC(),
	}
	f.publishLocked()

	go f.run(ctx, cancel, f.state.Generation, t)
	return true
}

func (f *Flow) run(ctx context.Context, cancel context.CancelFunc, generation uint64, t Trigger) {
	defer cancel()
	out := f.submit(ctx, t)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || generation != f.state.Generation {
		f.logger.Debug("discarding stale analysis", "generation", generation, "current", f.state.Generation)
		return
	}
	f.cancel = nil
	f.state = State{
		Phase:      out.phase,
		Message:    out.message,
		Result:     out.result,
		Generation: generation,
		StartedAt:  f.state.StartedAt,
		FinishedAt: f.now().UTC(),
	}
	f.publishLocked()
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ConsumeRedirect reports an unauthorized completion once and resets the flow to idle.
func (f *Flow) ConsumeRedirect() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Phase != PhaseUnauthorized {
		return false
	}
	f.state = State{Phase: PhaseIdle, Generation: f.state.Generation}
	f.publishLocked()
	return true
}

// Subscribe returns a channel that always holds the most recent state. The channel is
// closed when the flow is closed or the returned func is called.
func (f *Flow) Subscribe() (<-chan State, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan State, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextSub
	f.nextSub++
	f.subscribers[id] = ch
	ch <- f.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if sub, ok := f.subscribers[id]; ok {
				delete(f.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close cancels any in-flight submission and drops subscribers.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	for id, ch := range f.subscribers {
		close(ch)
		delete(f.subscribers, id)
	}
}

// publishLocked replaces whatever a subscriber has not read yet with the latest state.
func (f *Flow) publishLocked() {
	for _, ch := range f.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- f.state
	}
}
