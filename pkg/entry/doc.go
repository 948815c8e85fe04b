// Package entry provides storage for linked cloud account records.
//
// An [Entry] is the persisted identity+credential pair for one remote
// account. The account identifier is the uniqueness key: a store never
// holds two entries for the same identifier, and the check is atomic with
// the write so concurrent link attempts cannot both succeed.
//
// Two backends live here: [MemoryStore] for tests and ephemeral use, and
// [FileStore], a JSON state file that is the hub's default. An encrypted
// SQLite backend is provided by pkg/sqlite.
//
// [Manager] wraps a [Store] and adds the asynchronous reload scheduling
// the re-authentication flow needs: after a credential update the entry's
// active configuration is reloaded in the background, without the flow
// waiting for it.
package entry
