// Package extract infers capture dates from file and folder names.
//
// Each recognizer implements Extractor and handles one naming family (camera
// exports, messaging apps, epoch-prefixed uploads, screenshots, free-form
// date prefixes). A Chain tries them in a fixed order and returns the first
// guess that does not lie in the future. Order matters: narrower families that
// share a prefix with a broader one must come first; TestChainOrderMatters
// pins the identifier-tagged epoch extractor ahead of the date prefix one.
//
// Extractors never touch the filesystem, so every family is testable with
// plain strings.
package extract
