package value

import "testing"

func TestIsFalsey(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil is falsey", Nil(), true},
		{"false is falsey", Bool(false), true},
		{"true is truthy", Bool(true), false},
		{"zero is truthy", Number(0), false},
		{"empty string is truthy", Obj(&StringObj{Chars: ""}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFalsey(); got != tt.want {
				t.Errorf("IsFalsey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqualsComparesStringsByContent(t *testing.T) {
	a := Obj(&StringObj{Chars: "hi"})
	b := Obj(&StringObj{Chars: "hi"}) // deliberately a distinct, non-interned pointer
	if !a.Equals(b) {
		t.Errorf("Equals() = false for two StringObjs with identical content")
	}
}

func TestEqualsComparesOtherObjectsByIdentity(t *testing.T) {
	c1 := &ClassObj{Name: &StringObj{Chars: "A"}, Methods: NewTable()}
	c2 := &ClassObj{Name: &StringObj{Chars: "A"}, Methods: NewTable()}
	if Obj(c1).Equals(Obj(c2)) {
		t.Errorf("Equals() = true for two distinct ClassObj with the same name")
	}
	if !Obj(c1).Equals(Obj(c1)) {
		t.Errorf("Equals() = false for a ClassObj compared to itself")
	}
}

func TestValueStringFormatting(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"integer-valued float drops trailing zeros", Number(5), "5"},
		{"fractional float keeps precision", Number(5.5), "5.5"},
		{"bool true", Bool(true), "true"},
		{"nil", Nil(), "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
