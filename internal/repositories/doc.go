// Package repositories implements durable client storage.
//
// Two backends implement [Storage] and [Snapshots]:
//   - [KVRepository] and [SnapshotRepository] : the sqlite kv and entry_snapshots tables
//   - [FileStore] : a single JSON document on an afero filesystem
//
// [Open] picks one from configuration. Storage is a flat string namespace;
// the keys the client writes are listed in [Keys]. Snapshots keep the last
// watched list loaded from the server so it can be exported offline.
package repositories
