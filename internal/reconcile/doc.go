// Package reconcile keeps one entry first in an ordered key/value store.
//
// A reconcile is a single synchronous pass:
//  1. Take a snapshot of every entry in enumeration order.
//  2. Delete every entry.
//  3. Write the self entry.
//  4. Write back every snapshot entry in order, skipping stale self entries.
//
// The self entry is recognized by a Matcher rather than by exact name,
// because its name embeds an install directory that changes between installs.
// Any snapshot entry the matcher accepts is dropped.
//
// The pass is not transactional. A failure after step 2 leaves the store
// partially reconciled; callers that need atomicity keep the snapshot and
// Rewrite it on failure. Concurrent passes over the same store must be
// serialized by the caller.
package reconcile
