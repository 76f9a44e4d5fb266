package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/inline-menus/internal/backend"
	"github.com/atomicstack/inline-menus/internal/menu"
	"github.com/atomicstack/inline-menus/internal/theme"
	"github.com/atomicstack/inline-menus/internal/ui/command"
	uistate "github.com/atomicstack/inline-menus/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

const menuHeaderSeparator = "→"

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

func newLevel(f menu.Frame) *level {
	return uistate.NewLevel(f)
}

// Reloader swaps in a reloaded layout. It runs off the UI goroutine and
// reports its frames through the screen like any dispatch.
type Reloader func(ctx context.Context, evt backend.Event) error

// Options configures a Model.
type Options struct {
	// Width and Height fix the view size; zero follows the terminal.
	Width  int
	Height int
	// ShowFooter renders the key help line.
	ShowFooter bool
	// Verbose shows the outcome of every press as info.
	Verbose bool
	// Timeout bounds each dispatch; zero means no limit.
	Timeout time.Duration
	Watcher *backend.Watcher
	Reload  Reloader
}

// Model implements the Bubble Tea model that shows menu messages and turns
// key presses into dispatcher events.
type Model struct {
	messages     []*level
	focus        int
	loading      bool
	pendingLabel string
	errMsg       string
	infoMsg      string
	infoExpire   time.Time
	width        int
	height       int
	fixedWidth   bool
	fixedHeight  bool
	showFooter   bool
	verbose      bool

	filterCursor      cursor.Model
	filterCursorDirty bool

	handlers map[reflect.Type]msgHandler

	ctx     context.Context
	screen  *Screen
	bus     *command.Bus
	watcher *backend.Watcher
	reload  Reloader
}

// NewModel initialises the UI over a dispatcher whose transport is screen.
func NewModel(d command.Dispatcher, screen *Screen, opts Options) *Model {
	m := &Model{
		ctx:        context.Background(),
		screen:     screen,
		bus:        command.New(d, opts.Timeout),
		watcher:    opts.Watcher,
		reload:     opts.Reload,
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.screen != nil {
		cmds = append(cmds, waitForScreen(m.screen))
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForLayoutEvent(m.watcher))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(screenMsg{}):         m.handleScreenMsg,
		reflect.TypeOf(screenDoneMsg{}):     m.handleScreenDoneMsg,
		reflect.TypeOf(command.Result{}):    m.handleCommandResult,
		reflect.TypeOf(layoutEventMsg{}):    m.handleLayoutEventMsg,
		reflect.TypeOf(layoutDoneMsg{}):     m.handleLayoutDoneMsg,
		reflect.TypeOf(reloadedMsg{}):       m.handleReloadedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// currentLevel returns the focused message.
func (m *Model) currentLevel() *level {
	if m.focus < 0 || m.focus >= len(m.messages) {
		return nil
	}
	return m.messages[m.focus]
}
