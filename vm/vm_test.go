package vm

import (
	"bytes"
	"strings"
	"testing"

	"nilan/config"
	"nilan/value"
)

func newTestVM(t *testing.T) (*VM, *bytes.Buffer) {
	t.Helper()
	v := New(config.Default())
	var out bytes.Buffer
	v.SetOutput(&out)
	return v, &out
}

func mustGlobalNumber(t *testing.T, v *VM, name string) float64 {
	t.Helper()
	got, ok := v.GetGlobal(name)
	if !ok {
		t.Fatalf("global %q was never defined", name)
	}
	if !got.IsNumber() {
		t.Fatalf("global %q = %v, want a number", name, got)
	}
	return got.AsNumber()
}

// Scenario 1: spec.md §8 "Arithmetic".
func TestArithmetic(t *testing.T) {
	v, _ := newTestVM(t)
	if res := v.Interpret("var r = -1.2 + 3.4 * 5;"); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	got := mustGlobalNumber(t, v, "r")
	want := 15.8
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("r = %v, want %v (within 1e-9)", got, want)
	}
}

// Scenario 2: spec.md §8 "Closures over a mutating local" — two closures
// returned from the same call share the same upvalue cell.
func TestClosureOverMutatingLocal(t *testing.T) {
	v, _ := newTestVM(t)
	src := `
		fun counter() {
			var i = 0;
			fun inc() { i = i + 1; return i; }
			return inc;
		}
		var c = counter();
		var c1 = c();
		var c2 = c();
	`
	if res := v.Interpret(src); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	if got := mustGlobalNumber(t, v, "c1"); got != 1 {
		t.Errorf("c1 = %v, want 1", got)
	}
	if got := mustGlobalNumber(t, v, "c2"); got != 2 {
		t.Errorf("c2 = %v, want 2", got)
	}
}

// Scenario 3: spec.md §8 / SPEC_FULL.md §C, test_nested.cpp::testSwitchNested.
func TestSwitchNestedInLoop(t *testing.T) {
	v, _ := newTestVM(t)
	src := `
		var res = 0;
		for (var i = 0; i < 3; i = i + 1) {
			switch (i) {
				case 0:
					res = res + 1;
					break;
				case 1:
					res = res + 10;
					continue;
				default:
					res = res + 100;
			}
		}
	`
	if res := v.Interpret(src); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	if got := mustGlobalNumber(t, v, "res"); got != 111 {
		t.Errorf("res = %v, want 111", got)
	}
}

// Scenario 4: spec.md §8 "Inheritance + super".
func TestInheritanceAndSuper(t *testing.T) {
	v, _ := newTestVM(t)
	src := `
		class A { method() { return 10; } }
		class B < A { method() { return super.method() + 5; } }
		var b = B();
		var res = b.method();
	`
	if res := v.Interpret(src); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	if got := mustGlobalNumber(t, v, "res"); got != 15 {
		t.Errorf("res = %v, want 15", got)
	}
}

// Scenario 5: spec.md §8 "instanceof across the chain".
func TestInstanceofChain(t *testing.T) {
	v, _ := newTestVM(t)
	src := `
		class A {}
		class B < A {}
		var b = B();
		var r1 = b instanceof A;
		var r2 = b instanceof B;
		var r3 = 123 instanceof A;
	`
	if res := v.Interpret(src); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	tests := []struct {
		name string
		want bool
	}{
		{"r1", true},
		{"r2", true},
		{"r3", false},
	}
	for _, tt := range tests {
		got, ok := v.GetGlobal(tt.name)
		if !ok {
			t.Fatalf("global %q was never defined", tt.name)
		}
		if got.AsBool() != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got.AsBool(), tt.want)
		}
	}
}

// Field shadowing: when an instance has a field and its class a method of
// the same name, property access returns the field, because fields are
// probed before the method chain (SPEC_FULL.md §C, test_oo.cpp/test_completion_oop.cpp).
func TestFieldShadowsMethodOfSameName(t *testing.T) {
	v, _ := newTestVM(t)
	src := `
		class Box {
			init(v) { this.value = v; }
			value() { return -1; }
		}
		var b = Box(42);
		var r = b.value;
	`
	if res := v.Interpret(src); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	if got := mustGlobalNumber(t, v, "r"); got != 42 {
		t.Errorf("r = %v, want 42 (field access must not resolve the method of the same name)", got)
	}
}

// Division by zero is a runtime error (OQ-1), not IEEE infinity.
func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	v, _ := newTestVM(t)
	if res := v.Interpret("var x = 1 / 0;"); res != InterpretRuntimeError {
		t.Errorf("Interpret() = %v, want InterpretRuntimeError", res)
	}
}

// Compound-assignment and pre/post increment sugar (test_sugar.cpp),
// exercised across all three storage classes.
func TestAssignmentSugarAcrossStorageClasses(t *testing.T) {
	v, _ := newTestVM(t)
	src := `
		var g = 1;
		g += 4;
		fun useLocalAndUpvalue() {
			var loc = 10;
			loc -= 3;
			fun captureIt() {
				loc *= 2;
				return loc;
			}
			var fromUp = captureIt();
			return loc + fromUp;
		}
		var fromFn = useLocalAndUpvalue();
		var post = 5;
		var postResult = post++;
		var pre = 5;
		var preResult = ++pre;
	`
	if res := v.Interpret(src); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	if got := mustGlobalNumber(t, v, "g"); got != 5 {
		t.Errorf("g = %v, want 5", got)
	}
	if got := mustGlobalNumber(t, v, "fromFn"); got != 28 {
		t.Errorf("fromFn = %v, want 28 (loc=7 after -=3, captureIt doubles the shared loc to 14 and returns it, loc+fromUp=14+14)", got)
	}
	if got := mustGlobalNumber(t, v, "postResult"); got != 5 {
		t.Errorf("post++ result = %v, want 5 (original value)", got)
	}
	if got := mustGlobalNumber(t, v, "post"); got != 6 {
		t.Errorf("post after ++ = %v, want 6", got)
	}
	if got := mustGlobalNumber(t, v, "preResult"); got != 6 {
		t.Errorf("++pre result = %v, want 6 (updated value)", got)
	}
}

// Property targets are syntactically valid call-chain postfix/prefix
// operands per the grammar (`postfix := call ("++"|"--")?`, `call` includes
// `.`-chains), same as they're valid compound-assignment targets.
func TestIncDecOnPropertyTargets(t *testing.T) {
	v, _ := newTestVM(t)
	src := `
		class Box {
			init(v) {
				this.value = v;
			}
		}
		var b = Box(5);
		var postResult = b.value++;
		var preResult = --b.value;
	`
	if res := v.Interpret(src); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	if got := mustGlobalNumber(t, v, "postResult"); got != 5 {
		t.Errorf("b.value++ result = %v, want 5 (original value)", got)
	}
	if got := mustGlobalNumber(t, v, "preResult"); got != 5 {
		t.Errorf("--b.value result = %v, want 5 (6 - 1, updated value)", got)
	}
}

// The REPL/top-level last-expression value (OQ-3): the return the compiler
// emits for the script's final expression statement leaves its value
// readable via LastValue.
func TestLastValueExposesTopLevelExpressionResult(t *testing.T) {
	v, _ := newTestVM(t)
	if res := v.Interpret("1 + 2;"); res != InterpretOK {
		t.Fatalf("Interpret() = %v, want OK", res)
	}
	if got := v.LastValue(); !got.IsNumber() || got.AsNumber() != 3 {
		t.Errorf("LastValue() = %v, want 3", got)
	}
}

// Scenario 6: test_turing.cpp's Brainfuck host program, a worked example of
// the embedding surface (§4.6): native registration plus global read/write.
// A host embedding Nilan this way drives a Brainfuck tape entirely through
// native callbacks; the tape and pointer live in the host's Go variables, and
// only the final cell value is read back through a Nilan global.
func TestEmbeddingBrainfuckHost(t *testing.T) {
	runBrainfuckViaNilan := func(t *testing.T, program string) float64 {
		t.Helper()
		v, _ := newTestVM(t)

		tape := make([]float64, 30000)
		ptr := 0

		v.DefineNative("bfInc", func(host any, args []value.Value) (value.Value, error) {
			tape[ptr]++
			return value.Nil(), nil
		})
		v.DefineNative("bfDec", func(host any, args []value.Value) (value.Value, error) {
			tape[ptr]--
			return value.Nil(), nil
		})
		v.DefineNative("bfRight", func(host any, args []value.Value) (value.Value, error) {
			ptr++
			return value.Nil(), nil
		})
		v.DefineNative("bfLeft", func(host any, args []value.Value) (value.Value, error) {
			ptr--
			return value.Nil(), nil
		})
		v.DefineNative("bfCell", func(host any, args []value.Value) (value.Value, error) {
			return value.Number(tape[ptr]), nil
		})

		var sb strings.Builder
		loopDepth := 0
		for _, c := range program {
			switch c {
			case '+':
				sb.WriteString("bfInc();")
			case '-':
				sb.WriteString("bfDec();")
			case '>':
				sb.WriteString("bfRight();")
			case '<':
				sb.WriteString("bfLeft();")
			case '[':
				loopDepth++
				sb.WriteString("while (bfCell() != 0) {")
			case ']':
				loopDepth--
				sb.WriteString("}")
			}
		}
		if loopDepth != 0 {
			t.Fatalf("unbalanced brainfuck program %q", program)
		}
		sb.WriteString("var cell = bfCell();")

		if res := v.Interpret(sb.String()); res != InterpretOK {
			t.Fatalf("Interpret() = %v, want OK for program %q", res, program)
		}
		return mustGlobalNumber(t, v, "cell")
	}

	tests := []struct {
		name    string
		program string
		want    float64
	}{
		{"plain increments", "+++++", 5},
		{"loop decrementing one cell into another", "++ > +++ [ < + > - ] < .", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runBrainfuckViaNilan(t, tt.program); got != tt.want {
				t.Errorf("final cell = %v, want %v", got, tt.want)
			}
		})
	}
}
