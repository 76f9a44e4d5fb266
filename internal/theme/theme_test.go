package theme

import "testing"

func TestDefaultStylesArePopulated(t *testing.T) {
	s := Default()
	if s.Key == nil || s.SelectedKey == nil || s.Message == nil || s.Cursor == nil {
		t.Fatalf("expected default styles to be set, got %#v", s)
	}
	if Default() != s {
		t.Fatal("expected Default to return the shared style set")
	}
}

func TestPlainRendersUnchanged(t *testing.T) {
	s := Plain()
	if got := s.SelectedKey.Render("[ Ping ]"); got != "[ Ping ]" {
		t.Fatalf("expected plain render, got %q", got)
	}
	if s.Cursor != nil {
		t.Fatal("expected no cursor style in the plain set")
	}
}
