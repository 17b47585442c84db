// Package rbac derives effective permissions from the user/role/authority
// graph and reconstructs the hierarchical authority tree used by the
// permission-listing endpoints.
//
// Authorities are flat rows with a nullable parent pointer. The flat set of
// codes reachable through a user's roles drives access checks; the rebuilt
// forest drives presentation.
package rbac
