package vuey

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/vuey/pkg/persist"
	"github.com/vango-dev/vuey/pkg/store"
)

func quiet() store.RegistryOption {
	return store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestInstall(t *testing.T) {
	durable := persist.NewMemory()
	if err := durable.Set(store.RecordKey("cart"), `["apple"]`); err != nil {
		t.Fatal(err)
	}

	cart := New("cart", []string{}, Durable)
	theme := New("theme", "light", Session)

	reg, err := Install([]Entry{cart, theme}, quiet(), store.WithDurableBackend(durable))
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "cart" || got[1] != "theme" {
		t.Errorf("Names() = %v", got)
	}

	items, err := cart.Value()
	if err != nil || len(items) != 1 || items[0] != "apple" {
		t.Errorf("cart = %v, %v; want restored record", items, err)
	}

	g, err := NewGroup(map[string]Entry{"c": cart, "t": theme})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.ClearAll(); err != nil {
		t.Fatal(err)
	}
	if v, _ := theme.Value(); v != "" {
		t.Errorf("theme after ClearAll = %q", v)
	}
}

func TestInstall_Duplicate(t *testing.T) {
	first := New("prefs", 1, None)
	reg, err := Install([]Entry{first, New("prefs", 2, None), New("late", 3, None)}, quiet())
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
	if e, _ := reg.Lookup("prefs"); e != Entry(first) {
		t.Error("first store was replaced")
	}
}
