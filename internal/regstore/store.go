package regstore

import (
	"fmt"
	"io"
	"strings"
)

// Namespace identifies one store: a registry hive and a subkey path.
type Namespace struct {
	// Hive is the root key, e.g. "HKLM" or "HKCU"
	Hive string `json:"hive" mapstructure:"hive" yaml:"hive"`

	// Path is the backslash-separated subkey below the hive
	Path string `json:"path" mapstructure:"path" yaml:"path"`
}

// String returns the namespace as HIVE\Path.
func (n Namespace) String() string {
	return n.Hive + `\` + strings.Trim(n.Path, `\`)
}

// Validate checks that the namespace names a supported hive and a non-empty path.
func (n Namespace) Validate() error {
	if _, ok := canonicalHive(n.Hive); !ok {
		return fmt.Errorf("unknown hive %q", n.Hive)
	}
	if strings.Trim(n.Path, `\/ `) == "" {
		return fmt.Errorf("empty subkey path for hive %s", n.Hive)
	}
	if strings.Contains(n.Path, "..") {
		return fmt.Errorf("invalid subkey path %q", n.Path)
	}
	return nil
}

// canonicalHive maps accepted hive spellings to the short form.
func canonicalHive(h string) (string, bool) {
	switch strings.ToUpper(h) {
	case "HKLM", "HKEY_LOCAL_MACHINE":
		return "HKLM", true
	case "HKCU", "HKEY_CURRENT_USER":
		return "HKCU", true
	default:
		return "", false
	}
}

// Store is an ordered key/value store scoped to one namespace.
//
// Ordering contract, relied upon by the reconciler:
//   - ValueNames returns names in enumeration order.
//   - Setting a name that does not exist appends it after every existing name.
//   - Setting a name that exists replaces its value and keeps its position.
//   - Deleting a name removes it from the enumeration.
//
// Each call is individually atomic. A sequence of calls is not.
type Store interface {
	// ValueNames returns every value name in enumeration order.
	ValueNames() ([]string, error)

	// GetValue returns the value stored under name.
	// Returns ErrNotFound if the name does not exist.
	GetValue(name string) (Value, error)

	// SetValue creates or replaces the value stored under name.
	SetValue(name string, v Value) error

	// DeleteValue removes name from the store.
	// Returns ErrNotFound if the name does not exist.
	DeleteValue(name string) error
}

// Handle is an open Store that the caller must close.
type Handle interface {
	Store
	io.Closer
}

// Opener opens or creates namespaces.
type Opener interface {
	// Open opens ns for reading and writing, creating it if it does not exist.
	Open(ns Namespace) (Handle, error)
}
