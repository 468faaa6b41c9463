// Package identity talks to the external RétroBus identity API, the
// system of record for member credentials and profiles.
//
// The gateway only ever asks it one question: does this credential
// pair belong to a member, and if so, who. The answer is repackaged
// into a session token by the caller; this package never mints or
// verifies tokens itself.
package identity
