// Package persist keeps snapshot backups of store namespaces on disk.
//
// A backup is the ordered snapshot a reconcile started from, written as one
// JSON file named by its UUID. Each file carries a SHA-256 checksum over its
// target, namespace and entries; a backup whose checksum no longer matches is
// never written back to a store.
package persist
