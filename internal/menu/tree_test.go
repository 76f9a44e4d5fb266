package menu

import (
	"errors"
	"testing"
)

func sampleLayout() Layout {
	return Layout{
		ID:   "main",
		Text: "Main menu",
		Buttons: []Entry{
			SubmenuSpec{
				Layout: Layout{
					ID:   "sub",
					Text: "Sub menu",
					Buttons: []Entry{
						ButtonSpec{ID: "go", Text: "Go"},
						ButtonSpec{ID: "back", Text: "Back", Navigate: ".."},
					},
				},
				ButtonID:   "goSub",
				ButtonText: "Open sub",
			},
			ButtonSpec{ID: "ping", Text: "Ping"},
			SubmenuSpec{
				Layout:   Layout{ID: "help", Text: "Help", Buttons: []Entry{Label{Text: "FAQ"}}},
				ButtonID: "goHelp",
			},
		},
	}
}

func TestBuildRegistersEveryMenu(t *testing.T) {
	tree, err := Build(sampleLayout())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Len() != 3 {
		t.Fatalf("expected 3 menus, got %d", tree.Len())
	}
	want := []struct {
		id    string
		path  string
		index int
	}{
		{"main", "/main/", 0},
		{"sub", "/main/sub/", 1},
		{"help", "/main/help/", 2},
	}
	for _, w := range want {
		m, ok := tree.Lookup(w.id)
		if !ok {
			t.Fatalf("menu %q not registered", w.id)
		}
		if m.Path() != w.path {
			t.Fatalf("menu %q path = %q, want %q", w.id, m.Path(), w.path)
		}
		if m.Index() != w.index {
			t.Fatalf("menu %q index = %d, want %d", w.id, m.Index(), w.index)
		}
		byPath, ok := tree.LookupPath(w.path)
		if !ok || byPath != m {
			t.Fatalf("path %q does not resolve to %q", w.path, w.id)
		}
	}
	if _, ok := tree.LookupPath("/main/sub"); !ok {
		t.Fatalf("trailing slash should be optional")
	}
}

func TestSubmenuButtonOwnsChild(t *testing.T) {
	tree := MustBuild(sampleLayout())
	b, ok := tree.Root().Button("goSub")
	if !ok {
		t.Fatalf("goSub button missing")
	}
	child, ok := b.Child()
	if !ok || child.ID() != "sub" {
		t.Fatalf("expected goSub to own sub, got %v", child)
	}
	target, ok := b.NavigationTarget()
	if !ok || target.Value != "/main/sub/" {
		t.Fatalf("unexpected navigation target %+v", target)
	}
	parent, slot, ok := child.Parent()
	if !ok || parent != tree.Root() || slot != b {
		t.Fatalf("child parent linkage broken")
	}
	if b.EventPath() != "/main/goSub" {
		t.Fatalf("unexpected event path %q", b.EventPath())
	}
}

func TestBuildRejectsDuplicateMenuIDs(t *testing.T) {
	l := Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []Entry{
			SubmenuSpec{Layout: Layout{ID: "x", Text: "One"}},
			SubmenuSpec{Layout: Layout{ID: "x", Text: "Two"}},
		},
	}
	_, err := Build(l)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if !errors.Is(err, ErrConstruction) {
		t.Fatalf("expected ErrConstruction, got %v", err)
	}
	var cerr *ConstructionError
	if !errors.As(err, &cerr) || cerr.ID != "x" {
		t.Fatalf("expected construction error naming x, got %v", err)
	}
}

func TestBuildRejectsDuplicateButtonIDs(t *testing.T) {
	l := Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []Entry{
			ButtonSpec{ID: "a", Text: "A"},
			ButtonSpec{ID: "a", Text: "B"},
		},
	}
	if _, err := Build(l); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	cases := map[string]Layout{
		"empty root text":   {ID: "main", Text: "  "},
		"slash in id":       {ID: "a/b", Text: "Main"},
		"dot id":            {ID: "..", Text: "Main"},
		"empty button text": {ID: "main", Text: "Main", Buttons: []Entry{ButtonSpec{ID: "a", Text: " "}}},
		"space in menu id":  {ID: "main", Text: "Main", Buttons: []Entry{SubmenuSpec{Layout: Layout{ID: "a b", Text: "x"}}}},
	}
	for name, l := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Build(l); !errors.Is(err, ErrConstruction) {
				t.Fatalf("expected construction error, got %v", err)
			}
		})
	}
}

func TestAddButtonDerivesUniqueIDs(t *testing.T) {
	tree, err := New("main", "Main")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	first, err := tree.Root().AddButton("", "Hello, World")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := tree.Root().AddButton("", "hello world")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID() != "hello-world" || second.ID() != "hello-world-2" {
		t.Fatalf("unexpected ids %q, %q", first.ID(), second.ID())
	}
	if _, err := tree.Root().AddButton("hello-world", "again"); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestDetachCollapsesLaterIndices(t *testing.T) {
	tree, _ := New("main", "Main")
	for _, id := range []string{"a", "b", "c"} {
		if _, err := tree.Root().AddSubmenu(Submenu{ID: id, Text: id}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	b, _ := tree.Lookup("b")
	c, _ := tree.Lookup("c")
	if !tree.Detach(b) {
		t.Fatalf("detach refused")
	}
	if b.Index() != -1 || !b.Detached() {
		t.Fatalf("detached menu still indexed: %d", b.Index())
	}
	if c.Index() != 2 {
		t.Fatalf("expected c to shift to 2, got %d", c.Index())
	}
	if _, ok := tree.Lookup("b"); ok {
		t.Fatalf("b still in id index")
	}
	if _, ok := tree.LookupPath("/main/b/"); ok {
		t.Fatalf("b still in path index")
	}
	btn, _ := tree.Root().Button("b")
	if _, ok := btn.Child(); ok {
		t.Fatalf("button still owns detached menu")
	}
	if tree.Detach(tree.Root()) {
		t.Fatalf("root must not be detachable")
	}
}

func TestDetachRemovesDescendants(t *testing.T) {
	tree := MustBuild(Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []Entry{
			SubmenuSpec{Layout: Layout{ID: "a", Text: "A", Buttons: []Entry{
				SubmenuSpec{Layout: Layout{ID: "deep", Text: "Deep"}},
			}}},
			SubmenuSpec{Layout: Layout{ID: "z", Text: "Z"}},
		},
	})
	a, _ := tree.Lookup("a")
	tree.Detach(a)
	if tree.Len() != 2 {
		t.Fatalf("expected main and z to remain, got %d", tree.Len())
	}
	if _, ok := tree.Lookup("deep"); ok {
		t.Fatalf("descendant not detached")
	}
	z, _ := tree.Lookup("z")
	if z.Index() != 1 {
		t.Fatalf("expected z at 1, got %d", z.Index())
	}
}

func TestNoOpWritesKeepChangesClean(t *testing.T) {
	tree := MustBuild(sampleLayout())
	root := tree.Root()
	if _, err := root.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	b, _ := root.Button("ping")

	root.SetText(root.Text())
	root.SetText("   ")
	b.SetText(b.Text())
	b.SetText("")
	b.SetHidden(false)
	b.SetFull(false)
	b.WithURL("")

	if !root.Changes().Clean() || !b.Changes().Clean() {
		t.Fatalf("no-op writes dirtied changes: menu=%s button=%s", root.Changes(), b.Changes())
	}

	b.SetText("Pong")
	if !b.Changes().Has(ChangedText) {
		t.Fatalf("button text change not recorded: %s", b.Changes())
	}
	if !root.Changes().Has(ChangedLayout) || root.Changes().Has(ChangedText) {
		t.Fatalf("label change should mark the menu layout only: %s", root.Changes())
	}
}

func TestComputedPropsMarkAncestorsImpure(t *testing.T) {
	tree := MustBuild(sampleLayout())
	sub, _ := tree.Lookup("sub")
	b, _ := sub.Button("go")
	b.SetHiddenFunc(func() bool { return false })
	if !b.Impure() || !sub.Impure() || !tree.Root().Impure() {
		t.Fatalf("expected impurity to propagate to the root")
	}
	help, _ := tree.Lookup("help")
	if help.Impure() {
		t.Fatalf("sibling should stay pure")
	}
}

func TestChangesString(t *testing.T) {
	if got := Changes(0).String(); got != "clean" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (ChangedText | NeedsDraw).String(); got != "text|draw" {
		t.Fatalf("unexpected %q", got)
	}
}
