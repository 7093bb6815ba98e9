package compiler

import "fmt"

// SyntaxError is reported for every malformed construct the parser
// recovers from during panic-mode synchronisation; Compile collects all of
// them before returning, matching §7's "compiler continues parsing but
// ultimately returns no function" rule.
type SyntaxError struct {
	Line    int32
	Column  int32
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("💥 Nilan Syntax error:\nline:%d, column:%d - %s", e.Line, e.Column, e.Message)
}

// DeveloperError signals a bug in the compiler itself (an invariant the
// parser tables are supposed to guarantee did not hold) rather than a
// mistake in the user's source.
type DeveloperError struct {
	Message string
}

func (e *DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}
