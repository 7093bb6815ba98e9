package value

import "testing"

func TestInternReturnsSamePointerForEqualStrings(t *testing.T) {
	interner := NewInterner()
	calls := 0
	newObj := func(hash uint32) *StringObj {
		calls++
		return &StringObj{Chars: "hi", Hash: hash}
	}

	first := interner.Intern("hi", newObj)
	second := interner.Intern("hi", newObj)

	if first != second {
		t.Errorf("Intern returned distinct objects for the same content")
	}
	if calls != 1 {
		t.Errorf("newObj called %d times, want 1 (second Intern should hit the cache)", calls)
	}
}

func TestInternSweepUnmarkedDropsOnlyUnreferencedStrings(t *testing.T) {
	interner := NewInterner()
	kept := interner.Intern("kept", func(hash uint32) *StringObj { return &StringObj{Chars: "kept", Hash: hash} })
	interner.Intern("dropped", func(hash uint32) *StringObj { return &StringObj{Chars: "dropped", Hash: hash} })

	Mark(kept)
	interner.SweepUnmarked()

	var seen []string
	interner.Each(func(s *StringObj) { seen = append(seen, s.Chars) })
	if len(seen) != 1 || seen[0] != "kept" {
		t.Errorf("Each() after sweep = %v, want [kept]", seen)
	}
}
