// Package mongo implements store.UserStore on MongoDB, the default backend
// of the users API. Users live in a single collection keyed by ObjectID with
// a unique index on email.
package mongo
