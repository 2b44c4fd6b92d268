package turn

import (
	"context"
	"sync"
)

// Source is an ordered stream of events for one turn.
//
// Events is closed by the producer when the turn ends. Err reports the error
// that ended the stream and is only meaningful after Events is closed. Close
// tells the producer to stop; it is safe to call more than once.
type Source interface {
	Events() <-chan *Event
	Err() error
	Close() error
}

// Pipe is a channel-backed Source. The producer calls Emit for each event and
// Finish exactly once; the consumer reads Events and calls Close.
type Pipe struct {
	ch   chan *Event
	stop chan struct{}

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// NewPipe returns a Pipe whose channel buffers up to buf events.
func NewPipe(buf int) *Pipe {
	if buf < 0 {
		buf = 0
	}
	return &Pipe{ch: make(chan *Event, buf), stop: make(chan struct{})}
}

// Emit sends ev to the consumer. It returns false when the consumer has
// closed the pipe or ctx is done; the producer should stop then.
func (p *Pipe) Emit(ctx context.Context, ev *Event) bool {
	select {
	case <-p.stop:
		return false
	default:
	}
	select {
	case p.ch <- ev:
		return true
	case <-p.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

// Finish records err and closes the event channel.
func (p *Pipe) Finish(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.ch)
}

// Stopped is closed once the consumer calls Close.
func (p *Pipe) Stopped() <-chan struct{} { return p.stop }

func (p *Pipe) Events() <-chan *Event { return p.ch }

func (p *Pipe) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pipe) Close() error {
	p.closeOnce.Do(func() { close(p.stop) })
	return nil
}

// FromEvents returns a Source that replays evs and then ends with err.
func FromEvents(err error, evs ...*Event) Source {
	p := NewPipe(len(evs))
	for _, ev := range evs {
		p.ch <- ev
	}
	p.Finish(err)
	return p
}
