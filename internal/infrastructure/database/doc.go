// Package database manages the SQLite connection used by the sqlite
// document store driver.
//
// It opens the database with foreign keys enabled, optional WAL journalling,
// and a busy timeout, and restricts the pool to a single connection to match
// SQLite's single-writer model.
package database
