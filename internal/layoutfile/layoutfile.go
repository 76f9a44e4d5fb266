// Package layoutfile reads menu layouts from YAML documents.
//
// A document is a mapping with an optional id, a text and a buttons mapping.
// Each entry of buttons is keyed by the button id and is one of:
//
//	ping: Ping                       # a bare label
//	docs: {text: Docs, url: https://example.com}
//	greet: {text: Hello, onPress: greet, full: true}
//	back: {text: Back, navigate: ".."}
//	settings:                        # a submenu, recognised by buttons
//	  text: Settings
//	  buttonText: Open settings
//	  buttons: {...}
//	size: {dynamic: sizes, buttonText: Size}
//
// Mapping order is kept, so buttons render in the order they are written.
package layoutfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atomicstack/inline-menus/internal/menu"
	"gopkg.in/yaml.v3"
)

// ErrUnknownBinding is returned when a layout names an action or builder that
// the bindings do not provide.
var ErrUnknownBinding = errors.New("unknown binding")

// Bindings resolve the names a layout uses for code.
type Bindings struct {
	Actions  map[string]menu.Action
	Builders map[string]menu.Builder
}

// Load reads and decodes the layout file at path.
func Load(path string, b Bindings) (menu.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return menu.Layout{}, err
	}
	defer f.Close()
	l, err := Decode(f, b)
	if err != nil {
		return menu.Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Decode parses one YAML layout document.
func Decode(r io.Reader, b Bindings) (menu.Layout, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return menu.Layout{}, errors.New("empty layout document")
		}
		return menu.Layout{}, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	d := decoder{bindings: b}
	return d.layout(root)
}

type decoder struct {
	bindings Bindings
}

var (
	layoutKeys  = []string{"id", "text", "buttons"}
	buttonKeys  = []string{"text", "url", "navigate", "onPress", "full", "hidden"}
	submenuKeys = []string{"id", "text", "buttons", "buttonText", "full", "hidden", "dynamic"}
)

func (d decoder) layout(n *yaml.Node) (menu.Layout, error) {
	if n.Kind != yaml.MappingNode {
		return menu.Layout{}, nodeErr(n, "layout must be a mapping")
	}
	if err := checkKeys(n, layoutKeys); err != nil {
		return menu.Layout{}, err
	}
	var l menu.Layout
	if v := field(n, "id"); v != nil {
		l.ID = v.Value
	}
	if v := field(n, "text"); v != nil {
		l.Text = v.Value
	}
	if v := field(n, "buttons"); v != nil {
		entries, err := d.buttons(v)
		if err != nil {
			return menu.Layout{}, err
		}
		l.Buttons = entries
	}
	return l, nil
}

func (d decoder) buttons(n *yaml.Node) ([]menu.Entry, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErr(n, "buttons must be a mapping")
	}
	entries := make([]menu.Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var (
			e   menu.Entry
			err error
		)
		switch {
		case val.Kind == yaml.ScalarNode:
			e = menu.Label{ID: key.Value, Text: val.Value}
		case val.Kind == yaml.MappingNode && (field(val, "buttons") != nil || field(val, "dynamic") != nil):
			e, err = d.submenu(key.Value, val)
		case val.Kind == yaml.MappingNode:
			e, err = d.button(key.Value, val)
		default:
			err = nodeErr(val, "button %q must be a string or a mapping", key.Value)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type buttonDoc struct {
	Text     string `yaml:"text"`
	URL      string `yaml:"url"`
	Navigate string `yaml:"navigate"`
	OnPress  string `yaml:"onPress"`
	Full     bool   `yaml:"full"`
	Hidden   bool   `yaml:"hidden"`
}

func (d decoder) button(id string, n *yaml.Node) (menu.Entry, error) {
	if err := checkKeys(n, buttonKeys); err != nil {
		return nil, err
	}
	var doc buttonDoc
	if err := n.Decode(&doc); err != nil {
		return nil, err
	}
	spec := menu.ButtonSpec{
		ID:       id,
		Text:     doc.Text,
		URL:      doc.URL,
		Navigate: doc.Navigate,
		Full:     menu.Constant(doc.Full),
		Hidden:   menu.Constant(doc.Hidden),
	}
	if name := strings.TrimSpace(doc.OnPress); name != "" {
		action, ok := d.bindings.Actions[name]
		if !ok {
			return nil, nodeErr(n, "button %q: action %q: %v", id, name, ErrUnknownBinding)
		}
		spec.OnPress = action
	}
	return spec, nil
}

type submenuDoc struct {
	ID         string `yaml:"id"`
	Text       string `yaml:"text"`
	ButtonText string `yaml:"buttonText"`
	Full       bool   `yaml:"full"`
	Hidden     bool   `yaml:"hidden"`
	Dynamic    string `yaml:"dynamic"`
}

func (d decoder) submenu(buttonID string, n *yaml.Node) (menu.Entry, error) {
	if err := checkKeys(n, submenuKeys); err != nil {
		return nil, err
	}
	var doc submenuDoc
	if err := n.Decode(&doc); err != nil {
		return nil, err
	}
	spec := menu.SubmenuSpec{
		Layout:     menu.Layout{ID: doc.ID, Text: doc.Text},
		ButtonID:   buttonID,
		ButtonText: doc.ButtonText,
		Full:       doc.Full,
		Hidden:     doc.Hidden,
	}
	if name := strings.TrimSpace(doc.Dynamic); name != "" {
		builder, ok := d.bindings.Builders[name]
		if !ok {
			return nil, nodeErr(n, "submenu %q: builder %q: %v", buttonID, name, ErrUnknownBinding)
		}
		spec.Builder = builder
		return spec, nil
	}
	if v := field(n, "buttons"); v != nil {
		entries, err := d.buttons(v)
		if err != nil {
			return nil, err
		}
		spec.Buttons = entries
	}
	return spec, nil
}

func field(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func checkKeys(n *yaml.Node, allowed []string) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		ok := false
		for _, a := range allowed {
			if key.Value == a {
				ok = true
				break
			}
		}
		if !ok {
			return nodeErr(key, "unknown field %q", key.Value)
		}
	}
	return nil
}

// Error carries the source position of a layout problem.
type Error struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func nodeErr(n *yaml.Node, format string, args ...any) error {
	e := &Error{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
	for _, a := range args {
		if err, ok := a.(error); ok {
			e.Err = err
		}
	}
	return e
}
