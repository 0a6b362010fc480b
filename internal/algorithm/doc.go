// Package algorithm defines the contract shared by every image algorithm
// of the engine and the small general-purpose algorithms built on it.
//
// An Algorithm[T] has a name, an exact arity and an Apply method taking
// that many images. CheckInputs enforces the arity, rejects nil inputs and,
// for algorithms that combine images sample by sample, the alignment of
// their shapes. Filtering, thresholding and morphology live in their own
// packages and satisfy the same contract, so they compose with Chain and
// can be listed in a Registry.
package algorithm
