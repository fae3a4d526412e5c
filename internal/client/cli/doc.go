// Package cli is the todokeeper command-line client.
//
// Every command is a one-shot call against the HTTP API. The session token
// obtained by register or login is kept in a local SQLite file (see package
// session) keyed by server URL, so later commands run authenticated.
//
//	todokeeper -a http://127.0.0.1:3000 register -e me@example.com
//	todokeeper add buy milk
//	todokeeper list
//	todokeeper done <id>
package cli
