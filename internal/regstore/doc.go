// Package regstore provides the ordered key/value stores that hold API layer
// registrations.
//
// A store is one configuration namespace (a registry hive plus subkey on
// Windows). Its enumeration order is significant: the loader that consumes
// the namespace visits layers in that order, so the first entry is loaded
// first. Every implementation in this package enumerates in insertion order.
//
// Key concepts:
//   - Value: a typed registry value, preserved kind-for-kind
//   - Store: enumerate, get, set and delete values in one namespace
//   - Opener: opens or creates a namespace and returns a Handle
//   - MemStore, FileStore, registry store: the available backends
package regstore
