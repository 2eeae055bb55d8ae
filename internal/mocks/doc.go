// Package mocks provides hand-written test doubles for the store, auth and
// events interfaces. Each mock exposes optional function fields; when a field
// is nil a simple default behaviour applies.
package mocks
