// Package service contains the application use cases of the users API. It
// coordinates the domain rules, the user store, password hashing and event
// emission, and knows nothing about HTTP or the storage engine in use.
package service
