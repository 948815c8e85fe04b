// Package issue tracks repair notices surfaced to the user.
//
// A notice is identified by its (scope, key) pair: the scope is either
// the platform itself or an integration domain, and the key names the
// condition. Raising an already-known notice replaces it, so callers
// can raise freely without checking for existence first.
//
// The package provides a Registry interface plus an in-memory
// implementation; pkg/sqlite persists notices across restarts.
package issue
