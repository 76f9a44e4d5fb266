package dispatcher

import "strings"

// Event is a parsed button press: the owning tree, the path of the menu
// holding the button, and the button id.
type Event struct {
	Raw    string
	Tree   string
	Menu   string
	Button string
}

// ParseEvent splits a press path such as "/main/sub/goSub". It reports false
// for anything that is not shaped like one; such events belong to somebody
// else.
func ParseEvent(raw string) (Event, bool) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return Event{}, false
	}
	segments := strings.Split(strings.TrimPrefix(s, "/"), "/")
	if len(segments) < 2 {
		return Event{}, false
	}
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return Event{}, false
		}
	}
	last := len(segments) - 1
	return Event{
		Raw:    raw,
		Tree:   segments[0],
		Menu:   "/" + strings.Join(segments[:last], "/") + "/",
		Button: segments[last],
	}, true
}

func (e Event) String() string {
	return e.Menu + e.Button
}
