// Package auth keeps the login token and gates access to the agent.
//
// A Session wraps the settings file and exposes the bearer token stored in
// it under "access_token". Commands and screens that talk to the agent call
// Session.Require (or check Authenticated) and send the operator to the
// login flow when no token is present.
//
// Authenticator validates credentials locally before any request is made,
// then performs exactly one login or registration call. A Watcher follows
// the settings file so a running program notices a login or logout made by
// another proxycfg process.
package auth
