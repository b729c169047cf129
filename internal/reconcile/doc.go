// Package reconcile decides, per file, whether the embedded capture date and
// the filesystem modification time need fixing, and applies the fixes.
//
// Decide is pure: it turns an Inputs snapshot into a Plan. Engine gathers the
// inputs (filesystem, extractor chain, metadata gateway), calls Decide, and
// applies the plan. The metadata write and the modification-time write are
// independent; one failing never skips the other.
package reconcile
