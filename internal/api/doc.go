// Package api is the HTTP client for the union's REST backend. It owns the
// session cookie jar, forwards CSRF tokens, and maps transport and status
// failures onto the domain error taxonomy consumed by the session
// controller.
package api
