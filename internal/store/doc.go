// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, so the user service works the same
// against the MongoDB and PostgreSQL implementations.
package store
