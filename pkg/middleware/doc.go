// Package middleware provides the per-request authenticator and the
// authorization guards composed on top of it, plus Redis-backed rate
// limiting for the login endpoint.
//
// The authenticator resolves the current user at most once per request and
// threads it through the request context; guards read that context and
// short-circuit with 401/403 envelopes.
package middleware
