package menu

import (
	"path"
	"strconv"
	"strings"
)

// TargetKind selects how a Target is resolved.
type TargetKind int

const (
	// TargetPath is an absolute ("/a/b/") or relative ("./x", "../y") path.
	TargetPath TargetKind = iota
	// TargetID is a symbolic menu id, possibly naming another tree.
	TargetID
	// TargetIndex is a signed creation-order index.
	TargetIndex
)

// Target names a menu relative to some current menu.
type Target struct {
	Kind  TargetKind
	Value string
	Index int
}

// Path targets an absolute or relative path.
func Path(p string) Target { return Target{Kind: TargetPath, Value: p} }

// ID targets a symbolic id.
func ID(id string) Target { return Target{Kind: TargetID, Value: id} }

// Index targets a creation-order index. Negative values count back from the
// newest menu.
func Index(i int) Target { return Target{Kind: TargetIndex, Index: i} }

// Back targets the parent menu.
func Back() Target { return Path("..") }

// ParseTarget classifies a target string: a leading "/" or "." makes a path,
// a signed integer makes an index, anything else is an id.
func ParseTarget(s string) Target {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, ".") {
		return Path(s)
	}
	if i, err := strconv.Atoi(s); err == nil {
		return Index(i)
	}
	return ID(s)
}

func (t Target) String() string {
	switch t.Kind {
	case TargetIndex:
		return "index " + strconv.Itoa(t.Index)
	case TargetID:
		return "id " + strconv.Quote(t.Value)
	default:
		return "path " + strconv.Quote(t.Value)
	}
}

// IsRelative reports whether the target is a relative path.
func (t Target) IsRelative() bool {
	return t.Kind == TargetPath && !strings.HasPrefix(strings.TrimSpace(t.Value), "/")
}

// Resolve finds the menu a target names. Relative paths are resolved against
// from's path with filesystem semantics. Ids and absolute paths that this
// tree does not know are looked up in the peer tree named by their leading
// segment.
func (t *Tree) Resolve(from *Menu, target Target) (*Menu, error) {
	if from == nil {
		from = t.root
	}
	var (
		m  *Menu
		ok bool
	)
	switch target.Kind {
	case TargetIndex:
		return t.resolveIndex(from, target)
	case TargetID:
		m, ok = t.resolveID(strings.TrimSpace(target.Value))
	default:
		m, ok = t.resolveAbsolute(targetPath(from, target))
	}
	if !ok {
		return nil, &NavigationError{Target: target, From: from.Path(), Size: t.Len(), Err: ErrUnresolved}
	}
	return m, nil
}

// Navigate resolves target for a navigation away from from. Landing on from
// itself is an error.
func (t *Tree) Navigate(from *Menu, target Target) (*Menu, error) {
	m, err := t.Resolve(from, target)
	if err != nil {
		return nil, err
	}
	if m == from {
		return nil, &NavigationError{Target: target, From: from.Path(), Size: t.Len(), Err: ErrSelfNavigation}
	}
	return m, nil
}

// resolveIndex maps a signed index onto the creation order. A negative index
// counts back from the highest index and wraps by the tree size until it
// lands in range, so "-1" is always the menu created just before the newest.
func (t *Tree) resolveIndex(from *Menu, target Target) (*Menu, error) {
	size := t.Len()
	i := target.Index
	if i < 0 && size > 0 {
		i += size - 1
		for i < 0 {
			i += size
		}
	}
	m, ok := t.At(i)
	if !ok {
		return nil, &NavigationError{Target: target, From: from.Path(), Size: size, Err: ErrUnresolved}
	}
	return m, nil
}

// PeerTree returns the id of the other tree a target resolves into, or ""
// when it stays inside t. Only t's own indices are read, so it is safe to
// call before the peer is locked.
func (t *Tree) PeerTree(from *Menu, target Target) string {
	if from == nil {
		from = t.root
	}
	var head string
	switch target.Kind {
	case TargetIndex:
		return ""
	case TargetID:
		id := strings.TrimSpace(target.Value)
		if _, ok := t.byID[id]; ok || id == "" {
			return ""
		}
		head, _, _ = strings.Cut(id, "/")
	default:
		p := targetPath(from, target)
		if _, ok := t.byPath[p]; ok {
			return ""
		}
		head, _, _ = strings.Cut(strings.TrimPrefix(p, "/"), "/")
	}
	if head == t.id {
		return ""
	}
	return head
}

func targetPath(from *Menu, target Target) string {
	p := strings.TrimSpace(target.Value)
	if target.IsRelative() {
		p = path.Join(from.Path(), p)
	}
	return cleanPath(p)
}

// resolveID looks id up in t, then as a "tree/menu/..." path whose leading
// segment names t itself or a peer.
func (t *Tree) resolveID(id string) (*Menu, bool) {
	if id == "" {
		return nil, false
	}
	if m, ok := t.byID[id]; ok {
		return m, true
	}
	head, _, _ := strings.Cut(id, "/")
	if head == t.id {
		return t.resolveAbsolute(cleanPath("/" + id))
	}
	if t.peers == nil {
		return nil, false
	}
	peer, ok := t.peers.LookupTree(head)
	if !ok || peer == t {
		return nil, false
	}
	return peer.resolveAbsolute(cleanPath("/" + id))
}

func (t *Tree) resolveAbsolute(p string) (*Menu, bool) {
	if m, ok := t.byPath[p]; ok {
		return m, true
	}
	head, _, _ := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	if head == "" || head == t.id || t.peers == nil {
		return nil, false
	}
	peer, ok := t.peers.LookupTree(head)
	if !ok || peer == t {
		return nil, false
	}
	m, ok := peer.byPath[p]
	return m, ok
}

// cleanPath normalizes p into the registry's "/a/b/" form.
func cleanPath(p string) string {
	p = path.Clean("/" + strings.TrimSpace(p))
	if p == "/" {
		return p
	}
	return p + "/"
}
