// Package traverse walks the requested roots and feeds regular files to a
// fixed set of workers, each owning one exiftool supervisor for the whole run.
//
// Excluded directories prune their subtree. Per-file failures are logged and
// counted but never stop the walk. Cancel stops dispatch; files already handed
// to a worker finish.
package traverse
