package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestSetProperty_Struct(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		check   func(profile) bool
		wantErr error
	}{
		{"json tag", "name", "bob", func(p profile) bool { return p.Name == "bob" }, nil},
		{"untagged field name", "Age", 41, func(p profile) bool { return p.Age == 41 }, nil},
		{"whole number float", "Age", float64(42), func(p profile) bool { return p.Age == 42 }, nil},
		{"slice", "tags", []string{"x"}, func(p profile) bool { return reflect.DeepEqual(p.Tags, []string{"x"}) }, nil},
		{"nil slice", "tags", nil, func(p profile) bool { return p.Tags == nil }, nil},
		{"tagged field by go name", "Name", "bob", nil, ErrUnknownProperty},
		{"ignored field", "Hidden", "x", nil, ErrUnknownProperty},
		{"unexported field", "secret", "x", nil, ErrUnknownProperty},
		{"unknown", "missing", 1, nil, ErrUnknownProperty},
		{"wrong type", "Age", "old", nil, ErrArgument},
		{"fractional float", "Age", 1.5, nil, ErrArgument},
		{"number to string", "name", 65, nil, ErrArgument},
		{"nil for int", "Age", nil, nil, ErrArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("p", profile{Name: "ada", Age: 40, Tags: []string{"a"}}, None)
			mustRegister(t, newTestRegistry(), s)

			err := s.state.SetProperty(tt.key, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SetProperty error = %v, want %v", err, tt.wantErr)
				}
				if got := mustValue(t, s); got.Name != "ada" || got.Age != 40 {
					t.Errorf("state changed on error: %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetProperty error: %v", err)
			}
			if got := mustValue(t, s); !tt.check(got) {
				t.Errorf("unexpected state %+v", got)
			}
		})
	}
}

func TestSetProperty_Maps(t *testing.T) {
	t.Run("typed map", func(t *testing.T) {
		s := New("m", map[string]int{"a": 1}, None)
		mustRegister(t, newTestRegistry(), s)
		if err := s.state.SetProperty("b", 2); err != nil {
			t.Fatal(err)
		}
		if got := mustValue(t, s); !reflect.DeepEqual(got, map[string]int{"a": 1, "b": 2}) {
			t.Errorf("Value() = %v", got)
		}
		if err := s.state.SetProperty("c", "three"); !errors.Is(err, ErrArgument) {
			t.Errorf("error = %v, want ErrArgument", err)
		}
	})

	t.Run("nil map is created", func(t *testing.T) {
		s := New[map[string]string]("m", nil, None)
		mustRegister(t, newTestRegistry(), s)
		if err := s.state.SetProperty("k", "v"); err != nil {
			t.Fatal(err)
		}
		if got := mustValue(t, s); got["k"] != "v" {
			t.Errorf("Value() = %v", got)
		}
	})

	t.Run("map held in any", func(t *testing.T) {
		s := New[any]("dyn", map[string]any{"count": 1.0}, None)
		mustRegister(t, newTestRegistry(), s)
		if err := s.state.SetProperty("count", 2.0); err != nil {
			t.Fatal(err)
		}
		got := mustValue(t, s).(map[string]any)
		if got["count"] != 2.0 {
			t.Errorf("count = %v", got["count"])
		}
	})

	t.Run("int keys", func(t *testing.T) {
		s := New("ik", map[int]string{}, None)
		mustRegister(t, newTestRegistry(), s)
		if err := s.state.SetProperty("1", "x"); !errors.Is(err, ErrUnknownProperty) {
			t.Errorf("error = %v, want ErrUnknownProperty", err)
		}
	})
}

func TestSetProperty_Pointers(t *testing.T) {
	s := New("p", &profile{Name: "ada"}, None)
	mustRegister(t, newTestRegistry(), s)

	before := mustValue(t, s)
	if err := s.state.SetProperty("name", "bob"); err != nil {
		t.Fatal(err)
	}
	if before.Name != "ada" {
		t.Error("earlier read was modified")
	}
	if got := mustValue(t, s); got.Name != "bob" {
		t.Errorf("Name = %q", got.Name)
	}

	_ = s.state.Clear()
	if err := s.state.SetProperty("name", "x"); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("SetProperty on nil error = %v, want ErrUnknownProperty", err)
	}
}

func TestSetProperty_Scalar(t *testing.T) {
	s := New("n", 5, None)
	mustRegister(t, newTestRegistry(), s)
	if err := s.state.SetProperty("x", 1); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("error = %v, want ErrUnknownProperty", err)
	}
}

func TestSetProperties_AllOrNothing(t *testing.T) {
	s := New("p", profile{Name: "ada", Age: 40}, None)
	mustRegister(t, newTestRegistry(), s)

	err := s.state.SetProperties(map[string]any{"name": "bob", "zzz": 1})
	if !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("error = %v, want ErrUnknownProperty", err)
	}
	if got := mustValue(t, s); got.Name != "ada" {
		t.Errorf("partial update applied: %+v", got)
	}

	if err := s.state.SetProperties(map[string]any{"name": "bob", "Age": 41}); err != nil {
		t.Fatal(err)
	}
	if got := mustValue(t, s); got.Name != "bob" || got.Age != 41 {
		t.Errorf("Value() = %+v", got)
	}
}

func TestArg(t *testing.T) {
	if n, err := Arg[int]([]any{float64(3)}, 0); err != nil || n != 3 {
		t.Errorf("Arg[int](3.0) = %d, %v", n, err)
	}
	if _, err := Arg[int]([]any{}, 0); !errors.Is(err, ErrArgument) {
		t.Errorf("missing arg error = %v", err)
	}
	if m, err := Arg[map[string]int]([]any{nil}, 0); err != nil || m != nil {
		t.Errorf("Arg[map](nil) = %v, %v", m, err)
	}
	if v, err := Arg[any]([]any{nil}, 0); err != nil || v != nil {
		t.Errorf("Arg[any](nil) = %v, %v", v, err)
	}
}

func TestSaveStrategy(t *testing.T) {
	for _, s := range []SaveStrategy{None, Session, Durable} {
		got, err := ParseSaveStrategy(s.String())
		if err != nil || got != s {
			t.Errorf("ParseSaveStrategy(%q) = %v, %v", s.String(), got, err)
		}
	}
	if got, _ := ParseSaveStrategy("local"); got != Durable {
		t.Errorf("local = %v, want durable", got)
	}
	if _, err := ParseSaveStrategy("cloud"); err == nil {
		t.Error("ParseSaveStrategy(cloud) succeeded")
	}
	if RecordKey("cart") != "STORE/cart" {
		t.Errorf("RecordKey = %q", RecordKey("cart"))
	}
}
