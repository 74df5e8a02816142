// Package authz implements the role-based authorization engine.
//
// The engine computes the effective permission set of a user as the
// deduplicated union of the permissions granted by every role currently
// assigned to that user. Nothing is cached: each check re-reads the live
// role and grant edges, so role edits take effect on the very next
// authorization decision.
//
// Every engine instance is pinned to one guard namespace. Roles and
// permissions under other guards are invisible to it, which lets the same
// role name mean different things in different authentication contexts.
package authz
