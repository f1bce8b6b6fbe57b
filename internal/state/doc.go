// Package state records the last install performed for each target.
//
// An InstallRecord remembers which value name was written first, from which
// install directory, and which backup was taken beforehand. Records are
// persisted as JSON files in the state directory, one per target.
package state
