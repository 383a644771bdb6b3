// Package store defines the persistence interfaces the engine depends on.
// The engine core never touches the database directly: it is handed these
// narrow interfaces, which keeps every algorithm testable against
// in-memory fakes. The canonical implementations live in
// internal/platform/postgres.
package store
