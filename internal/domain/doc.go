// Package domain contains the core business entities of the users API: the
// user record, its partial update, ID and email rules, and the validation
// errors raised when an entity is malformed. It is independent of any
// storage engine or delivery mechanism.
package domain
