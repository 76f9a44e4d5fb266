package app

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/atomicstack/inline-menus/internal/layoutfile"
	"github.com/atomicstack/inline-menus/internal/menu"
)

//go:embed demo.yaml
var demoLayout string

var (
	shirtSizes  = []string{"S", "M", "L", "XL"}
	shirtColors = []string{"red", "green", "blue"}
)

// DemoBindings returns the actions and builders the demo layout refers to.
func DemoBindings() layoutfile.Bindings {
	return layoutfile.Bindings{
		Actions: map[string]menu.Action{
			"countdown":  countdown,
			"greet":      greet,
			"toggleWide": toggleWide,
			"quit":       quit,
		},
		Builders: map[string]menu.Builder{
			"shirt": shirtMenu,
		},
	}
}

// DemoLayout decodes the built-in demo layout.
func DemoLayout() (menu.Layout, error) {
	return layoutfile.Decode(strings.NewReader(demoLayout), DemoBindings())
}

// countdown relabels its button once per step and restores it at the end.
func countdown(_ context.Context, p *menu.Press) (menu.Reply, error) {
	label := p.Button.Text()
	n := 3
	return menu.NewSequence(func(context.Context) (menu.Step, error) {
		if n == 0 {
			n--
			return menu.Yield(&menu.Result{ButtonText: label}), nil
		}
		if n < 0 {
			return menu.Done(), nil
		}
		step := menu.Yield(&menu.Result{ButtonText: fmt.Sprintf("Last %d...", n)})
		n--
		return step, nil
	}), nil
}

func greet(_ context.Context, p *menu.Press) (menu.Reply, error) {
	count, _ := p.Values().Get(p.Button.ID())
	n, _ := count.(int)
	n++
	text := "Hello!"
	if n > 1 {
		text = fmt.Sprintf("Hello again! That makes %d greetings.", n)
	}
	return &menu.Result{MenuText: text, Value: n}, nil
}

func toggleWide(_ context.Context, p *menu.Press) (menu.Reply, error) {
	wide := !p.Button.Full()
	text := "Wide: off"
	if wide {
		text = "Wide: on"
	}
	return &menu.Result{ButtonText: text, ButtonFull: menu.Bool(wide)}, nil
}

func quit(context.Context, *menu.Press) (menu.Reply, error) {
	return &menu.Result{Close: true, CloseText: "Bye!"}, nil
}

func next(options []string, current string) string {
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// shirtMenu builds the order menu from the values picked so far. Each pick
// pushes a value and rebuilds the menu.
func shirtMenu(values *menu.Values) (menu.Content, error) {
	size := orDefault(values.String("size"), shirtSizes[1])
	color := orDefault(values.String("color"), shirtColors[0])
	pick := func(options []string, current string) menu.Action {
		return func(context.Context, *menu.Press) (menu.Reply, error) {
			return &menu.Result{Value: next(options, current), Rebuild: true}, nil
		}
	}
	confirm := func(_ context.Context, p *menu.Press) (menu.Reply, error) {
		p.Tree.Root().SetText(fmt.Sprintf("Ordered a %s shirt in size %s. Anything else?", color, size))
		root := menu.Index(0)
		return &menu.Result{Navigate: &root}, nil
	}
	return menu.Layout{
		Text: fmt.Sprintf("Your shirt: size %s, %s.", size, color),
		Buttons: []menu.Entry{
			menu.ButtonSpec{ID: "size", Text: "Size: " + size, OnPress: pick(shirtSizes, size)},
			menu.ButtonSpec{ID: "color", Text: "Color: " + color, OnPress: pick(shirtColors, color)},
			menu.ButtonSpec{ID: "confirm", Text: "Confirm", OnPress: confirm, Full: menu.Constant(true)},
			menu.ButtonSpec{ID: "back", Text: "Back", Navigate: ".."},
		},
	}, nil
}
