package obfuscate

import "github.com/sqlvibe/obfuscate/internal/OB"

// ColumnSeed derives a column's seed from the obfuscation run's root seed
// and the column's name. Exposed standalone (rather than only used
// internally by NewObfuscator) because a caller obfuscating the same
// logical column across two schemas — e.g. a join key split across two
// tables — needs to reproduce the identical per-column seed without
// constructing a full Obfuscator.
func ColumnSeed(rootSeed uint64, name string) uint64 {
	return OB.Hash(rootSeed, name)
}
