// Package config loads service configuration from ATELIER_-prefixed
// environment variables and validates it before startup.
package config
