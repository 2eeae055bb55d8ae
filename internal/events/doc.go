// Package events lets the user service announce lifecycle changes without
// knowing who listens.
//
// The primary components are:
// - UserEvent: a registration or profile change for one user
// - EventHandler: interface for components that consume events
// - EventEmitter: interface for components that publish events
// - InMemoryEventEmitter: synchronous fan-out to registered handlers
// - LogHandler: writes an audit line per event
package events
