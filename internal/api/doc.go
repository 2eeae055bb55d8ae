// Package api exposes the users service over HTTP. Handlers decode and
// validate requests, call the service layer and translate its errors into
// the JSON error bodies clients expect.
package api
