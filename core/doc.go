// Package core contains the canonical auth domain contracts, entities, and
// orchestration logic for sessions, workspace OAuth provider configurations,
// and per-user OAuth connections. Lower-level adapters must depend on this
// package; core must not depend on storage or transport adapters.
package core
