// Package dating defines the confidence lattice and the dated guess value
// shared by the extractor chain and the reconciliation engine.
//
// A Confidence records how specific a timestamp is, from None (no real
// information) up to Second. Guesses are only ever compared by confidence; the
// time value itself is compared separately when deciding whether a write would
// change anything.
package dating
