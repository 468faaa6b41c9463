// Package mailer delivers outgoing mail through the configured SMTP
// relay.
//
// Handlers talk to the Sender interface; the SMTP implementation
// builds a single-part HTML MIME message and hands it to the relay
// with PLAIN authentication. Nothing is stored: once the relay accepts
// the message, this service's involvement ends.
package mailer
