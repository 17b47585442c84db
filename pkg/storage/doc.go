// Package storage implements file uploads: blob contents on the local
// filesystem under a configured root, metadata rows in Postgres.
package storage
