package obfuscate

import "io"

// Model is implemented by every per-column obfuscation strategy. A model
// is trained on a source column, finalized once training is complete,
// and then asked to generate an obfuscated column of the same shape. The
// same trained-and-finalized model can be asked to Generate many times;
// UpdateSeed rotates its internal seed between calls so repeated
// generation against the same source doesn't repeat output verbatim.
type Model interface {
	// Train folds one source column's values into the model's statistics.
	// Train may be called multiple times (e.g. once per input batch);
	// the model accumulates across calls.
	Train(col ColumnView) error
	// Finalize is called once after all Train calls, before any Generate
	// call. It applies cutoffs/smoothing that require the complete
	// statistics (e.g. the Markov model's four finalize passes).
	Finalize() error
	// Generate produces an obfuscated column with the same shape (length,
	// null mask, array offsets) as col, whose values are derived
	// deterministically from col's values and the model's current seed.
	Generate(col ColumnView) (ColumnView, error)
	// UpdateSeed rotates the model's internal seed, so a subsequent
	// Generate call over the same input produces different output.
	UpdateSeed()
	// Serialize writes the model's trained state.
	Serialize(w io.Writer) error
	// Deserialize replaces the model's state with a previously
	// serialized one.
	Deserialize(r io.Reader) error
}
