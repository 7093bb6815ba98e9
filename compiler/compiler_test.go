package compiler

import (
	"testing"

	"nilan/lexer"
	"nilan/value"
)

func compileSource(t *testing.T, src string) (*value.FunctionObj, []error) {
	t.Helper()
	lex := lexer.New(src)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() error = %v", err)
	}
	return Compile(tokens, value.NewInterner())
}

func TestCompileValidProgramProducesNoErrors(t *testing.T) {
	_, errs := compileSource(t, `var x = 1 + 2; print x;`)
	if len(errs) != 0 {
		t.Fatalf("Compile() errs = %v, want none", errs)
	}
}

func TestCompileCollectsMultipleSyntaxErrors(t *testing.T) {
	// Two independent syntax errors, separated by a statement boundary the
	// compiler's panic-mode recovery (synchronize) should resync on.
	_, errs := compileSource(t, `var = ; var y = 1 + ;`)
	if len(errs) < 2 {
		t.Errorf("Compile() collected %d errors, want at least 2 (panic-mode recovery should keep parsing past the first)", len(errs))
	}
	for _, e := range errs {
		if _, ok := e.(*SyntaxError); !ok {
			t.Errorf("error %v is a %T, want *SyntaxError", e, e)
		}
	}
}

func TestCompileRejectsTopLevelReturn(t *testing.T) {
	_, errs := compileSource(t, `return 1;`)
	if len(errs) == 0 {
		t.Errorf("Compile() of a top-level return produced no errors, want a SyntaxError")
	}
}

func TestCompileEmitsConstantForEachDistinctLiteral(t *testing.T) {
	fn, errs := compileSource(t, `print 1; print "hi"; print 1;`)
	if len(errs) != 0 {
		t.Fatalf("Compile() errs = %v, want none", errs)
	}
	// The duplicate "1" constant is not deduplicated (the compiler doesn't
	// promise constant-pool deduplication), but the string literal must
	// appear in the pool as a string constant.
	foundString := false
	for _, c := range fn.Chunk.Constants {
		if c.IsObjType(value.ObjStringType) {
			foundString = true
		}
	}
	if !foundString {
		t.Errorf("no interned string constant found in compiled chunk")
	}
}

func TestCompileInvalidAssignmentTargetIsAnError(t *testing.T) {
	_, errs := compileSource(t, `1 + 2 = 3;`)
	if len(errs) == 0 {
		t.Errorf("Compile() of an invalid assignment target produced no errors")
	}
}
