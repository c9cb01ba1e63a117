package store

import (
	"fmt"
	"sort"
)

// Group is a fixed set of registered stores under caller-chosen labels.
// It owns nothing and does no registration of its own.
type Group struct {
	labels  []string
	members map[string]Entry
}

// NewGroup builds a group. Every member must already be registered.
func NewGroup(members map[string]Entry) (*Group, error) {
	g := &Group{members: make(map[string]Entry, len(members))}
	for label, e := range members {
		if e == nil {
			return nil, fmt.Errorf("%w: group member %q is nil", ErrArgument, label)
		}
		if !e.Bound() {
			return nil, &StoreError{Op: "group " + label, Name: e.Name(), Err: ErrNotBound}
		}
		g.members[label] = e
		g.labels = append(g.labels, label)
	}
	sort.Strings(g.labels)
	return g, nil
}

// Get returns the member under label.
func (g *Group) Get(label string) (Entry, bool) {
	e, ok := g.members[label]
	return e, ok
}

// Labels returns member labels in sorted order.
func (g *Group) Labels() []string {
	out := make([]string, len(g.labels))
	copy(out, g.labels)
	return out
}

// ResetAll calls "reset" on every member in label order and returns the
// first failure. A member without "reset" is a failure.
func (g *Group) ResetAll() error {
	return g.each("reset")
}

// ClearAll calls "clear" on every member in label order and returns the
// first failure.
func (g *Group) ClearAll() error {
	return g.each("clear")
}

func (g *Group) each(action string) error {
	for _, label := range g.labels {
		e := g.members[label]
		if err := e.Actions().Call(action); err != nil {
			return fmt.Errorf("group member %q: %w", label, err)
		}
	}
	return nil
}
