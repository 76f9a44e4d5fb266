package dispatcher

import (
	"context"

	"github.com/atomicstack/inline-menus/internal/menu"
)

// Transport sends rendered frames to whatever displays them.
type Transport interface {
	// Replace sends or edits the whole message of the frame's tree.
	Replace(ctx context.Context, f menu.Frame) error
	// PatchKeyboard edits only the keyboard of the shown message.
	PatchKeyboard(ctx context.Context, f menu.Frame) error
	// Remove takes a closed menu off the screen.
	Remove(ctx context.Context, r Removal) error
}

// Removal describes how a closed menu leaves the screen. Without
// KeepMessage the message is deleted. With it only the keyboard goes, and
// Edited reports that Text replaces the message body first.
type Removal struct {
	Tree        string
	Menu        string
	Text        string
	KeepMessage bool
	Edited      bool
}

// Discard is a transport that drops everything.
type Discard struct{}

func (Discard) Replace(context.Context, menu.Frame) error       { return nil }
func (Discard) PatchKeyboard(context.Context, menu.Frame) error { return nil }
func (Discard) Remove(context.Context, Removal) error           { return nil }
