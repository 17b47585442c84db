// Package manage implements the administrative CRUD surface: users, roles
// and authorities, their relation tables, pagination, uniqueness checks and
// the delete guards that keep the permission graph consistent.
package manage
