package command

import (
	"context"
	"time"

	"github.com/atomicstack/inline-menus/internal/dispatcher"
	"github.com/atomicstack/inline-menus/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Dispatcher is the part of the callback dispatcher the bus drives.
type Dispatcher interface {
	Dispatch(ctx context.Context, raw string) (dispatcher.Outcome, error)
	Back(ctx context.Context, tree string) (dispatcher.Outcome, error)
}

// Kind selects what a request asks the dispatcher to do.
type Kind int

const (
	// Press dispatches the event path of a pressed key.
	Press Kind = iota
	// Back navigates a tree's shown menu to its parent.
	Back
)

func (k Kind) String() string {
	if k == Back {
		return "back"
	}
	return "press"
}

// Request encapsulates one dispatcher invocation.
type Request struct {
	Kind  Kind
	Tree  string
	Event string
	Label string
}

func (r Request) target() string {
	if r.Kind == Back {
		return r.Tree
	}
	return r.Event
}

// Result is the message a finished request produces.
type Result struct {
	Request Request
	Outcome dispatcher.Outcome
	Err     error
}

// Bus runs dispatcher requests off the UI goroutine.
type Bus struct {
	d       Dispatcher
	timeout time.Duration
}

// New initialises a command bus. A positive timeout bounds each request.
func New(d Dispatcher, timeout time.Duration) *Bus {
	return &Bus{d: d, timeout: timeout}
}

// Execute wraps a request into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(ctx context.Context, req Request) tea.Cmd {
	kind, target := req.Kind.String(), req.target()
	events.Command.Queue(kind, target)
	return func() tea.Msg {
		if b == nil || b.d == nil || target == "" {
			events.Command.Skip(kind, target)
			return nil
		}
		if b.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		var (
			out dispatcher.Outcome
			err error
		)
		switch req.Kind {
		case Back:
			out, err = b.d.Back(ctx, req.Tree)
		default:
			out, err = b.d.Dispatch(ctx, req.Event)
		}
		events.Command.Result(kind, target, out.Handled, err)
		return Result{Request: req, Outcome: out, Err: err}
	}
}
