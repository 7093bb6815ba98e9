package vm

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// GCStats summarizes the collector's activity for diagnostics: the REPL's
// `:gc` introspection command and the CLI's `-gcstats` flag (SPEC_FULL.md
// §B) both read this rather than poking at VM internals directly.
type GCStats struct {
	Collections  int
	LiveObjects  int
	SweptObjects int
}

// String renders counts with thousands separators via go-humanize, matching
// the teacher's disassembler style of producing readable diagnostic text
// rather than raw integers.
func (s GCStats) String() string {
	return fmt.Sprintf("collections=%s live=%s swept-last=%s",
		humanize.Comma(int64(s.Collections)),
		humanize.Comma(int64(s.LiveObjects)),
		humanize.Comma(int64(s.SweptObjects)))
}

// GCStats reports the collector's activity since the VM was created.
func (vm *VM) GCStats() GCStats { return vm.gcStats }
