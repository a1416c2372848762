// Package tokenstore persists the authentication session record between
// process restarts. It offers an in-memory store for tests, a bbolt-backed
// store for single-device deployments, and a Redis-backed store for terminals
// that share session state.
//
// Records are encoded with a compact versioned binary format rather than
// JSON so that a truncated or tampered record fails decoding loudly instead
// of yielding a partially filled session.
package tokenstore
