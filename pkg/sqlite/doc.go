// Package sqlite provides durable SQLite-backed storage for account
// entries and repair notices.
//
// [EntryStore] implements entry.Store and [IssueRegistry] implements
// issue.Registry, both on top of a shared [DB] with split reader and
// writer connections (WAL mode, single writer to avoid lock errors).
// The schema is managed by embedded migrations applied with
// [RunMigrations] on startup.
//
// Credentials are encrypted at rest with AES-256-GCM. The cipher key is
// not the master key itself but an HKDF-SHA256 subkey bound to the
// credential column, so the master key file can later serve other
// purposes without key reuse. [LoadOrCreateKey] manages the master key
// file, creating it with a random key on first use.
package sqlite
