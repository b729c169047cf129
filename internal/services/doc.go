// Package services defines the error markers and context helpers shared by
// the metadata gateway, the reconciliation engine and the traversal driver.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so transport failures,
//     protocol failures and tool-reported failures stay distinguishable with
//     errors.Is after several layers of wrapping.
//   - FileError, which tags every per-file failure with the path it came from.
//   - Context helpers that stamp the file path, worker index and run ID for
//     logging.
package services
