// Package server implements the HTTP surface of the RétroBus mail API.
//
// It exposes the session authentication gateway (login, verify,
// profile) and, behind the session guard, the mail and template route
// groups the front end consumes. The gateway is the security boundary:
// a request that reaches any guarded handler carries verified,
// non-expired identity claims in its context.
package server
