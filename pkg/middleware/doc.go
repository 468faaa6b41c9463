// Package middleware provides the shared gin middleware for the mail
// API.
//
// It contains the session token guard that gates every protected route,
// CORS handling for the front end origin, and panic recovery. Session
// tokens are minted and verified here as well, so the login handlers
// and the guard share one claims definition.
package middleware
