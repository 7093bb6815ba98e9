package value

import "testing"

func TestTableSetGet(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  Value
	}{
		{name: "number", key: "x", val: Number(42)},
		{name: "bool", key: "flag", val: Bool(true)},
		{name: "nil", key: "empty", val: Nil()},
	}

	table := NewTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isNew := table.Set(tt.key, tt.val)
			if !isNew {
				t.Fatalf("Set(%q) reported an existing key on first insert", tt.key)
			}
			got, ok := table.Get(tt.key)
			if !ok {
				t.Fatalf("Get(%q) = _, false; want true", tt.key)
			}
			if !got.Equals(tt.val) {
				t.Errorf("Get(%q) = %v, want %v", tt.key, got, tt.val)
			}
		})
	}
}

func TestTableSetOverwritesExistingKey(t *testing.T) {
	table := NewTable()
	table.Set("a", Number(1))
	isNew := table.Set("a", Number(2))
	if isNew {
		t.Errorf("Set on existing key reported isNew = true")
	}
	got, _ := table.Get("a")
	if got.AsNumber() != 2 {
		t.Errorf("Get(%q) = %v, want 2", "a", got)
	}
}

func TestTableDeleteLeavesTombstoneThatDoesNotBreakProbing(t *testing.T) {
	table := NewTable()
	table.Set("a", Number(1))
	table.Set("b", Number(2))
	table.Set("c", Number(3))

	if !table.Delete("b") {
		t.Fatalf("Delete(%q) = false, want true", "b")
	}
	if table.Has("b") {
		t.Errorf("Has(%q) = true after delete", "b")
	}
	// a and c must still resolve even though b's slot, which may sit on
	// their probe chain, is now a tombstone rather than truly empty.
	if _, ok := table.Get("a"); !ok {
		t.Errorf("Get(%q) failed after deleting an unrelated key", "a")
	}
	if _, ok := table.Get("c"); !ok {
		t.Errorf("Get(%q) failed after deleting an unrelated key", "c")
	}
}

func TestTableGrowsPastLoadFactor(t *testing.T) {
	table := NewTable()
	for i := 0; i < 200; i++ {
		key := string(rune('a' + i%26))
		table.Set(key+string(rune(i)), Number(float64(i)))
	}
	count := 0
	table.Each(func(_ string, _ Value) { count++ })
	if count != 200 {
		t.Errorf("Each visited %d entries, want 200", count)
	}
}

func TestTableFindStringSupportsWeakInterning(t *testing.T) {
	table := NewTable()
	table.Set("hello", Bool(true))
	got, ok := table.FindString("hello", Hash("hello"))
	if !ok || got != "hello" {
		t.Errorf("FindString(%q) = %q, %v; want %q, true", "hello", got, ok, "hello")
	}
	if _, ok := table.FindString("goodbye", Hash("goodbye")); ok {
		t.Errorf("FindString(%q) unexpectedly found a match", "goodbye")
	}
}
