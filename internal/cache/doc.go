// Package cache provides a file-based cache for provider completions.
//
// Entries are keyed by a SHA-256 hash of the provider, model, and full
// prompt, and store the raw response string with a creation timestamp
// and TTL. Expired entries are dropped on read. Reruns of the same
// review over an unchanged diff then cost no provider calls.
package cache
