package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestGroup_RejectsUnboundMembers(t *testing.T) {
	_, err := NewGroup(map[string]Entry{"cart": New("cart", counter{}, None)})
	if !errors.Is(err, ErrNotBound) {
		t.Errorf("NewGroup error = %v, want ErrNotBound", err)
	}
	if _, err := NewGroup(map[string]Entry{"nil": nil}); !errors.Is(err, ErrArgument) {
		t.Errorf("NewGroup(nil member) error = %v, want ErrArgument", err)
	}
}

func TestGroup_ResetAndClear(t *testing.T) {
	r := newTestRegistry()
	cart := New("cart", counter{Count: 1}, None)
	user := New("user", &profile{Name: "ada"}, None)
	mustRegister(t, r, cart, user)

	g, err := NewGroup(map[string]Entry{"user": user, "cart": cart})
	if err != nil {
		t.Fatalf("NewGroup error: %v", err)
	}
	if got := g.Labels(); !reflect.DeepEqual(got, []string{"cart", "user"}) {
		t.Errorf("Labels() = %v", got)
	}
	if e, ok := g.Get("cart"); !ok || e.Name() != "cart" {
		t.Errorf("Get(cart) = %v, %v", e, ok)
	}

	if err := g.ClearAll(); err != nil {
		t.Fatalf("ClearAll error: %v", err)
	}
	if got := mustValue(t, cart); got.Count != 0 {
		t.Errorf("cart after clear = %+v", got)
	}
	if got := mustValue(t, user); got != nil {
		t.Errorf("user after clear = %+v, want nil", got)
	}

	if err := g.ResetAll(); err != nil {
		t.Fatalf("ResetAll error: %v", err)
	}
	if got := mustValue(t, cart); got.Count != 1 {
		t.Errorf("cart after reset = %+v", got)
	}
	if got := mustValue(t, user); got == nil || got.Name != "ada" {
		t.Errorf("user after reset = %+v", got)
	}
}

func TestGroup_MissingActionFails(t *testing.T) {
	r := newTestRegistry()
	plain := New("a", counter{Count: 1}, None)
	bare := New("b", counter{}, None).DefineActions(func(*State[counter]) Actions { return Actions{} })
	mustRegister(t, r, plain, bare)

	g, err := NewGroup(map[string]Entry{"a": plain, "b": bare})
	if err != nil {
		t.Fatal(err)
	}
	_ = plain.Actions().Call("set", counter{Count: 4})

	err = g.ResetAll()
	if !errors.Is(err, ErrMissingAction) {
		t.Fatalf("ResetAll error = %v, want ErrMissingAction", err)
	}
	// Members before the failing label were still reset.
	if got := mustValue(t, plain); got.Count != 1 {
		t.Errorf("a.Count = %d, want 1", got.Count)
	}
}
