// Package file provides a TOML-backed configuration store.
//
// Nested TOML tables are flattened to dot-notation keys on load, so
// [similarity] threshold = 0.9 is read as "similarity.threshold".
// Writes persist immediately with owner-only file permissions.
package file
