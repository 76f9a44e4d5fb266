package menu

import "cogentcore.org/core/base/ordmap"

// Value is one entry of a value stack.
type Value struct {
	ID    string
	Value any
}

// Values is the ordered record of values handed back by button actions. It
// holds one slot per contributing button id; pushing again for the same id
// replaces the value but keeps the slot's position. One Values is shared by
// every menu of a tree, including menus attached dynamically.
type Values struct {
	slots *ordmap.Map[string, any]
}

// NewValues returns an empty value stack.
func NewValues() *Values {
	return &Values{slots: ordmap.New[string, any]()}
}

// Push records value for the button id.
func (v *Values) Push(id string, value any) {
	v.slots.Add(id, value)
}

// Get returns the value recorded for id.
func (v *Values) Get(id string) (any, bool) {
	return v.slots.ValueByKeyTry(id)
}

// String returns the value recorded for id when it is a string.
func (v *Values) String(id string) string {
	val, ok := v.Get(id)
	if !ok {
		return ""
	}
	s, _ := val.(string)
	return s
}

// Len returns the number of slots.
func (v *Values) Len() int {
	return v.slots.Len()
}

// Snapshot copies the slots in push order.
func (v *Values) Snapshot() []Value {
	out := make([]Value, 0, v.slots.Len())
	for _, kv := range v.slots.Order {
		out = append(out, Value{ID: kv.Key, Value: kv.Value})
	}
	return out
}

// Clear drops every slot.
func (v *Values) Clear() {
	v.slots.Reset()
}
