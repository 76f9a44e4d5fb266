package menu

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction is the root of every build-time failure.
	ErrConstruction = errors.New("menu construction failed")
	ErrDuplicateID  = fmt.Errorf("%w: duplicate id", ErrConstruction)
	ErrInvalidText  = fmt.Errorf("%w: empty text", ErrConstruction)
	ErrInvalidID    = fmt.Errorf("%w: invalid id", ErrConstruction)

	// ErrNavigation is the root of every target resolution failure.
	ErrNavigation     = errors.New("menu navigation failed")
	ErrUnresolved     = fmt.Errorf("%w: target not found", ErrNavigation)
	ErrSelfNavigation = fmt.Errorf("%w: menu navigates to itself", ErrNavigation)

	// ErrSequenceProtocol reports a multi-step value nobody consumed while
	// strict mode is enabled.
	ErrSequenceProtocol = errors.New("unrecognized sequence step")
)

// ConstructionError describes a failure while building a tree.
type ConstructionError struct {
	Op  string
	ID  string
	Err error
}

func (e *ConstructionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// NavigationError names a target that could not be resolved.
type NavigationError struct {
	Target Target
	From   string
	Size   int
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Target.Kind == TargetIndex {
		return fmt.Sprintf("navigate %s from %s (tree size %d): %v", e.Target, e.From, e.Size, e.Err)
	}
	return fmt.Sprintf("navigate %s from %s: %v", e.Target, e.From, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

func constructionErr(op, id string, err error) error {
	return &ConstructionError{Op: op, ID: id, Err: err}
}
