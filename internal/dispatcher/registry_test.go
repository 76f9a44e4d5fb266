package dispatcher

import (
	"runtime"
	"testing"
	"time"

	"github.com/atomicstack/inline-menus/internal/menu"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndUnregister(t *testing.T) {
	reg := NewRegistry()
	a := menu.MustBuild(menu.Layout{ID: "main", Text: "Main"})
	b := menu.MustBuild(menu.Layout{ID: "help", Text: "Help"})
	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(a), "re-registering the same tree is a no-op")
	require.NoError(t, reg.Register(b))
	require.Equal(t, []string{"help", "main"}, reg.Trees())

	clash := menu.MustBuild(menu.Layout{ID: "main", Text: "Other"})
	require.ErrorIs(t, reg.Register(clash), ErrTreeRegistered)

	got, ok := reg.LookupTree("main")
	require.True(t, ok)
	require.Same(t, a, got)

	a.Values().Push("x", 1)
	removed, ok := reg.Unregister("main")
	require.True(t, ok)
	require.Same(t, a, removed)
	require.Equal(t, 0, a.Values().Len(), "unregistering clears the value stack")
	_, ok = reg.LookupTree("main")
	require.False(t, ok)
}

func TestRegistryDisposeMatchesInstance(t *testing.T) {
	reg := NewRegistry()
	a := menu.MustBuild(menu.Layout{ID: "main", Text: "Main"})
	other := menu.MustBuild(menu.Layout{ID: "main", Text: "Other"})
	require.NoError(t, reg.Register(a))
	require.False(t, reg.Dispose(other))
	require.True(t, reg.Dispose(a))
	require.False(t, reg.Dispose(a))
}

func TestRegistryEnablesCrossTreeTargets(t *testing.T) {
	reg := NewRegistry()
	a := menu.MustBuild(menu.Layout{ID: "main", Text: "Main"})
	b := menu.MustBuild(menu.Layout{ID: "help", Text: "Help"})
	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(b))
	got, err := a.Resolve(nil, menu.ID("help"))
	require.NoError(t, err)
	require.Same(t, b.Root(), got)
}

type owner struct {
	name string
	buf  [64]byte
}

func TestKeepDisposesWithKeeper(t *testing.T) {
	reg := NewRegistry()
	tree := menu.MustBuild(menu.Layout{ID: "main", Text: "Main"})
	require.NoError(t, reg.Register(tree))

	func() {
		o := &owner{name: "chat"}
		Keep(reg, o, tree)
	}()
	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := reg.LookupTree("main")
		return !ok
	}, 5*time.Second, 20*time.Millisecond)
}
