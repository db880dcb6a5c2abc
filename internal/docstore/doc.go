// Package docstore persists the registry Document.
//
// The whole catalogue is one aggregate, saved and loaded as a unit;
// there are no incremental writes. Two drivers implement the
// registry.Store contract, selected by storage.driver in config:
//
//   - FileStore (default): a single JSON file, written via temp file
//     and atomic rename.
//   - SQLiteStore: a single row in a SQLite table, replaced inside a
//     transaction.
//
// Both treat a missing store as an empty document. Unparseable stored
// bytes yield ErrCorrupt; I/O failures yield ErrUnavailable.
package docstore
