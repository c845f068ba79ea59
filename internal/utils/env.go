package utils

import "os"

const envPrefix = "TEAMPULSE_"

// Env reads the TEAMPULSE_-prefixed environment variable for key and falls
// back when it is unset or empty.
func Env(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}
