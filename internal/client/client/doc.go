// Package client talks to the gophtasks HTTP API.
//
// HTTPClient covers registration, login, the task endpoints and the health
// check. The bearer token is passed in explicitly and attached to every
// task request; the client never persists it.
//
// # Error Handling
//
// Non-2xx answers come back as *APIError carrying the server's message and
// unwrapping to the matching sentinel from internal/common (ErrorNotFound,
// ErrorForbidden, ErrorValidation and so on). Transport failures wrap
// ErrUnavailable.
package client
