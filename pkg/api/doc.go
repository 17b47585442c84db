// Package api exposes the HTTP surface: login and session endpoints, the
// administrative CRUD routes for users, roles and authorities, file upload
// and download, and the health and metrics endpoints. Routes are registered
// on a gorilla/mux router behind the request, recovery, metrics and
// authentication middleware.
package api
