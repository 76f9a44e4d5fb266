package menu

import "context"

// Press describes one button press handed to an action.
type Press struct {
	Event  string
	Tree   *Tree
	Menu   *Menu
	Button *Button
}

// Values returns the tree's value stack.
func (p *Press) Values() *Values {
	return p.Tree.Values()
}

// Action handles a press. A nil Reply means nothing changes.
type Action func(ctx context.Context, p *Press) (Reply, error)

// Reply is what an action hands back: a *Result, a Future, or a *Sequence.
type Reply interface {
	reply()
}

// Result is a plain action outcome. Empty strings and nil pointers leave the
// corresponding property unchanged. Of Navigate, Close, Attach/AttachFunc
// and Rebuild only the first set one, in that order, is honored.
type Result struct {
	// ButtonText, ButtonHidden and ButtonFull update the acting button. A
	// ButtonText equal to the current label leaves the button unchanged and
	// sends nothing.
	ButtonText   string
	ButtonHidden *bool
	ButtonFull   *bool
	// MenuText replaces the acting menu's message body.
	MenuText string

	Navigate *Target

	// Close removes the menu. A CloseText equal to the current text only
	// strips the keyboard; a different one edits the message first.
	Close     bool
	CloseText string

	// Attach or AttachFunc opens a new menu owned by the acting button,
	// replacing any menu it attached before.
	Attach     Content
	AttachFunc Builder

	// Rebuild regenerates the nearest dynamic menu.
	Rebuild bool

	// Value is pushed onto the value stack under the acting button's id.
	Value any
}

func (*Result) reply() {}

// Future is a result that is awaited before it is applied.
type Future func(ctx context.Context) (Reply, error)

func (Future) reply() {}

// StepKind is the transition a sequence takes.
type StepKind int

const (
	// StepDone ends the sequence.
	StepDone StepKind = iota
	// StepResult carries a result that is applied before resuming.
	StepResult
	// StepValue carries an opaque value for the dispatcher's step handler.
	StepValue
)

// Step is one transition of a sequence.
type Step struct {
	Kind   StepKind
	Result *Result
	Value  any
}

// Yield returns a step applying r.
func Yield(r *Result) Step { return Step{Kind: StepResult, Result: r} }

// YieldValue returns a step forwarding v to the step handler.
func YieldValue(v any) Step { return Step{Kind: StepValue, Value: v} }

// Done returns the final step.
func Done() Step { return Step{Kind: StepDone} }

// Sequence is a resumable multi-step interaction. Each call to Next resumes
// it until it reports StepDone or an error.
type Sequence struct {
	next func(ctx context.Context) (Step, error)
}

func (*Sequence) reply() {}

// NewSequence wraps a step function. The function is called until it returns
// a StepDone step or an error.
func NewSequence(next func(ctx context.Context) (Step, error)) *Sequence {
	return &Sequence{next: next}
}

// Steps builds a sequence from fixed items: *Result items are applied, any
// other non-nil item is forwarded to the step handler.
func Steps(items ...any) *Sequence {
	i := 0
	return NewSequence(func(context.Context) (Step, error) {
		for i < len(items) {
			item := items[i]
			i++
			switch v := item.(type) {
			case nil:
				continue
			case *Result:
				return Yield(v), nil
			case Step:
				return v, nil
			default:
				return YieldValue(v), nil
			}
		}
		return Done(), nil
	})
}

// Next resumes the sequence.
func (s *Sequence) Next(ctx context.Context) (Step, error) {
	if s == nil || s.next == nil {
		return Done(), nil
	}
	if err := ctx.Err(); err != nil {
		return Step{}, err
	}
	return s.next(ctx)
}

// Bool returns a pointer to b, for the optional fields of Result.
func Bool(b bool) *bool { return &b }

// NavigateTo returns a result navigating to the parsed target.
func NavigateTo(target string) *Result {
	t := ParseTarget(target)
	return &Result{Navigate: &t}
}
