// Package auth orchestrates authentication for the platform.
//
// It composes the credential store (user rows), the authorization engine and
// the token ledger into the operations the query facade exposes: credential
// login, WhatsApp phone bootstrap login, logout, token refresh, token
// validation and user management.
//
// The service holds no mutable state across calls. Every operation receives
// the resolved identity explicitly, there is no ambient "current user";
// request-scoped identity lives in the web layer only.
package auth
