package value

// Interner is the weak string-interning table described in spec.md §3 and
// §4.4: it holds only a reference to each canonical StringObj, and the
// collector's sweep phase (vm package) removes unmarked entries from it
// before the underlying StringObj is freed. Built on the same open-
// addressing Table used for globals/fields/methods, keyed by the string's
// own content.
type Interner struct {
	table *Table
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{table: NewTable()}
}

// Intern returns the canonical StringObj for s, allocating and registering
// a new one via newObj if none exists yet. newObj is only invoked on a
// miss, so a hot path that repeatedly interns the same literal never
// allocates past the first occurrence.
func (in *Interner) Intern(s string, newObj func(hash uint32) *StringObj) *StringObj {
	hash := Hash(s)
	if canonical, ok := in.table.FindString(s, hash); ok {
		v, _ := in.table.Get(canonical)
		return v.AsObject().(*StringObj)
	}
	obj := newObj(hash)
	in.table.Set(s, Obj(obj))
	return obj
}

// Each invokes fn for every interned StringObj currently registered.
func (in *Interner) Each(fn func(*StringObj)) {
	in.table.Each(func(_ string, val Value) {
		fn(val.AsObject().(*StringObj))
	})
}

// SweepUnmarked deletes every entry whose StringObj is not marked. Must be
// called after the trace phase has run and before the unmarked StringObj
// instances are freed by the sweep phase, so that a weakly-held string
// never outlives its last marked reference but is also never freed while
// still (incorrectly) reachable through the intern table.
func (in *Interner) SweepUnmarked() {
	var stale []string
	in.table.Each(func(key string, val Value) {
		obj := val.AsObject().(*StringObj)
		if !IsMarked(obj) {
			stale = append(stale, key)
		}
	})
	for _, key := range stale {
		in.table.Delete(key)
	}
}
