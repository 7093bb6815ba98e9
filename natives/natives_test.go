package natives

import (
	"testing"

	"nilan/config"
	"nilan/value"
	"nilan/vm"
)

func TestClockReturnsANumber(t *testing.T) {
	got, err := Clock(nil, nil)
	if err != nil {
		t.Fatalf("Clock() error = %v", err)
	}
	if !got.IsNumber() || got.AsNumber() <= 0 {
		t.Errorf("Clock() = %v, want a positive number", got)
	}
}

func TestLength(t *testing.T) {
	v := vm.New(config.Default())
	s := v.NewString("hello")

	got, err := Length(v, []value.Value{s})
	if err != nil {
		t.Fatalf("Length() error = %v", err)
	}
	if got.AsNumber() != 5 {
		t.Errorf("Length(%q) = %v, want 5", "hello", got)
	}
}

func TestLengthRejectsNonStringArgument(t *testing.T) {
	if _, err := Length(nil, []value.Value{value.Number(5)}); err == nil {
		t.Errorf("Length(5) = nil error, want an error")
	}
}

func TestIndex(t *testing.T) {
	v := vm.New(config.Default())
	s := v.NewString("hello")

	tests := []struct {
		name string
		i    float64
		want string
	}{
		{"first", 0, "h"},
		{"last", 4, "o"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Index(v, []value.Value{s, value.Number(tt.i)})
			if err != nil {
				t.Fatalf("Index() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Index(%q, %v) = %q, want %q", "hello", tt.i, got.String(), tt.want)
			}
		})
	}
}

func TestIndexOutOfRangeIsAnError(t *testing.T) {
	v := vm.New(config.Default())
	s := v.NewString("hi")
	if _, err := Index(v, []value.Value{s, value.Number(10)}); err == nil {
		t.Errorf("Index out of range = nil error, want an error")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	v := vm.New(config.Default())
	src := v.NewString("name: nilan\nversion: 1\n")

	decoded, err := YAMLDecode(v, []value.Value{src})
	if err != nil {
		t.Fatalf("YAMLDecode() error = %v", err)
	}
	inst, ok := decoded.AsObject().(*value.InstanceObj)
	if !ok {
		t.Fatalf("YAMLDecode() = %T, want *value.InstanceObj", decoded.AsObject())
	}
	name, ok := inst.Fields.Get("name")
	if !ok || name.String() != "nilan" {
		t.Errorf("decoded field %q = %v, want %q", "name", name, "nilan")
	}

	encoded, err := YAMLEncode(v, []value.Value{decoded})
	if err != nil {
		t.Fatalf("YAMLEncode() error = %v", err)
	}
	if !encoded.IsObjType(value.ObjStringType) {
		t.Errorf("YAMLEncode() did not return a string value")
	}
}

func TestIsTerminalReturnsABool(t *testing.T) {
	got, err := IsTerminal(nil, nil)
	if err != nil {
		t.Fatalf("IsTerminal() error = %v", err)
	}
	if !got.IsBool() {
		t.Errorf("IsTerminal() = %v, want a bool", got)
	}
}
