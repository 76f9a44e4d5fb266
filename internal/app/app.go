package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/inline-menus/internal/backend"
	"github.com/atomicstack/inline-menus/internal/dispatcher"
	"github.com/atomicstack/inline-menus/internal/layoutfile"
	"github.com/atomicstack/inline-menus/internal/logging/events"
	"github.com/atomicstack/inline-menus/internal/menu"
	"github.com/atomicstack/inline-menus/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Config describes user-provided application options.
type Config struct {
	LayoutPath string
	Watch      bool
	Strict     bool
	RowWidth   int
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
}

// LoadLayout reads the configured layout file, or the built-in demo when no
// path is set.
func LoadLayout(cfg Config) (menu.Layout, error) {
	if cfg.LayoutPath == "" {
		return DemoLayout()
	}
	return layoutfile.Load(cfg.LayoutPath, DemoBindings())
}

// BuildTree builds the tree for a layout with the configured options.
func BuildTree(cfg Config, l menu.Layout) (*menu.Tree, error) {
	t, err := menu.Build(l, menu.WithRowWidth(cfg.RowWidth))
	if err != nil {
		return nil, err
	}
	events.Layout.Load(cfg.LayoutPath, t.Len())
	return t, nil
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	ctx := context.Background()
	layout, err := LoadLayout(cfg)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	tree, err := BuildTree(cfg, layout)
	if err != nil {
		return fmt.Errorf("build layout: %w", err)
	}

	screen := ui.NewScreen()
	defer screen.Close()
	d := dispatcher.New(nil, screen, dispatcher.Options{Strict: cfg.Strict})
	if err := d.Open(ctx, tree); err != nil {
		return err
	}

	var watcher *backend.Watcher
	if cfg.Watch {
		watcher, err = backend.NewWatcher(cfg.LayoutPath, func(context.Context) (menu.Layout, error) {
			return LoadLayout(cfg)
		})
		if err != nil {
			return fmt.Errorf("watch layout: %w", err)
		}
		defer watcher.Stop()
	}

	model := ui.NewModel(d, screen, ui.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
		Watcher:    watcher,
		Reload:     NewSwapper(cfg, d, screen, tree.ID()).Reload,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	events.App.Stop(fmt.Sprint(err))
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Swapper replaces the shown tree whenever the layout is reloaded.
type Swapper struct {
	cfg       Config
	d         *dispatcher.Dispatcher
	transport dispatcher.Transport

	mu      sync.Mutex
	current string
}

// NewSwapper returns a swapper that starts out with the tree named current.
func NewSwapper(cfg Config, d *dispatcher.Dispatcher, tr dispatcher.Transport, current string) *Swapper {
	return &Swapper{cfg: cfg, d: d, transport: tr, current: current}
}

// Reload builds the reloaded layout, disposes the tree it replaces and opens
// the new one. Values picked on the old tree are dropped with it. A layout
// that does not build leaves the old tree in place.
func (s *Swapper) Reload(ctx context.Context, evt backend.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh, err := BuildTree(s.cfg, evt.Layout)
	if err != nil {
		events.Layout.Error(evt.Path, err)
		return err
	}
	reg := s.d.Registry()
	old, ok := reg.LookupTree(s.current)
	if ok {
		if err := old.Lock(ctx); err != nil {
			return err
		}
		reg.Dispose(old)
		old.Unlock()
	}
	if err := s.d.Open(ctx, fresh); err != nil {
		return err
	}
	s.current = fresh.ID()
	// The fresh message is up before the old one goes, so the screen never
	// runs out of keyboards in between.
	if ok && old.ID() != fresh.ID() {
		rm := dispatcher.Removal{Tree: old.ID(), Menu: old.Root().Path()}
		if err := s.transport.Remove(ctx, rm); err != nil {
			return err
		}
	}
	events.Layout.Reload(evt.Path)
	return nil
}
