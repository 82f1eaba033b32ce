// Package tasks keeps the in-memory entry cache consistent with the backend.
//
// # Entry Cache
//
// [Cache] mirrors the user's watched and played entries. Lookups are linear
// scans by natural key or server id; the lists are personal-scale. Every
// mutation replaces the whole list with copies, so a snapshot obtained from
// [Cache.List] is never changed underneath its holder, and is never current
// after an await either.
//
// # Remote Mutation Gateway
//
// [Gateway] methods decide create vs. update against the cache, call the
// backend, and then reconcile the cache and the notification center from the
// result. Nothing is applied to the cache before the backend confirms it, so
// a failure leaves the cache exactly as it was. The reconciliation step looks
// the entry up again by id and applies only the fields that were sent.
//
// Each operation reports through one notification: a loading notification is
// created first and then transitioned to success or error under the same id.
// Precondition failures (unknown entry ids) emit a single error notification
// and make no network call.
//
// # Results and Concurrency
//
// Operations are synchronous and return a [Result]. [Async] runs one in the
// background for fire-and-forget callers; [Gateway.Wait] blocks until every
// background operation has finished. Two concurrent updates to the same entry
// are not ordered: whichever response is reconciled last wins for the fields
// it carried.
//
// # Bulk Updates
//
// [Gateway.BulkUpdate] applies one update to many entries through a bounded,
// rate limited worker pool and reports [ProgressUpdate] values on a
// non-blocking channel.
package tasks
