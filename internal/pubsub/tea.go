package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd waits for the next event on ch and returns it as a tea.Msg.
// It returns nil once ctx is done or ch is closed, which ends the listen loop.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			return event
		}
	}
}

// ContinuousListener keeps one subscription for the life of a program.
// Return Listen from Init, and again from Update after each event.
type ContinuousListener[T any] struct {
	ctx     context.Context
	ch      <-chan Event[T]
	lastSeq uint64
}

// NewContinuousListener subscribes to sub until ctx is done.
func NewContinuousListener[T any](ctx context.Context, sub Subscriber[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  sub.Subscribe(ctx),
	}
}

// Listen returns a command that delivers the next event.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch)
}

// Missed records ev as seen and returns how many events published before it
// never reached this listener.
func (l *ContinuousListener[T]) Missed(ev Event[T]) uint64 {
	var missed uint64
	if l.lastSeq > 0 && ev.Seq > l.lastSeq+1 {
		missed = ev.Seq - l.lastSeq - 1
	}
	if ev.Seq > l.lastSeq {
		l.lastSeq = ev.Seq
	}
	return missed
}
