// Package session owns the authenticated session for one client instance:
// who is logged in, their committee memberships, and their permission
// snapshots. A Controller keeps the snapshot fresh against the union backend
// and publishes replacements to subscribers; all state transitions go through
// a single pure reducer.
package session
