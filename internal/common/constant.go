// Package common contains shared constants and sentinel errors used across
// todokeeper components.
package common

// AuthHeaderName is the HTTP header carrying the session token, both on
// responses from register/login and on authenticated requests.
const AuthHeaderName = "x-auth"

// AccessAuth is the only token purpose issued today.
const AccessAuth = "auth"

// RequestIDHeader correlates a request with its access log line. Incoming
// values are kept, otherwise the server generates one.
const RequestIDHeader = "X-Request-Id"
