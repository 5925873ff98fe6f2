// Package env has small helpers for reading process environment variables.
package env

import "os"

// Get reads the named environment variable, returning fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
