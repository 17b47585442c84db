// Package config loads application configuration from PROXIMA_-prefixed
// environment variables and validates it before startup proceeds.
package config
