package reconcile

import (
	"errors"

	"github.com/danieljhkim/layerorder/internal/regstore"
)

// Entry is one name/value pair of a store.
type Entry struct {
	Name  string         `json:"name"`
	Value regstore.Value `json:"value"`
}

// Snapshot is the content of a store in enumeration order.
type Snapshot []Entry

// Names returns the entry names in order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for _, e := range s {
		names = append(names, e.Name)
	}
	return names
}

// Equal reports whether two snapshots hold the same names and values in the same order.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i].Name != o[i].Name || !s[i].Value.Equal(o[i].Value) {
			return false
		}
	}
	return true
}

// Take reads every entry of st in enumeration order.
//
// A value that cannot be written back as read fails the snapshot with
// regstore.ErrMalformed; nothing has been modified at that point.
func Take(st regstore.Store) (Snapshot, error) {
	names, err := st.ValueNames()
	if err != nil {
		return nil, regstore.NewOpError("enumerate", "", regstore.ErrAccess, err)
	}

	snap := make(Snapshot, 0, len(names))
	for _, name := range names {
		v, err := st.GetValue(name)
		if err != nil {
			kind := regstore.ErrAccess
			if errors.Is(err, regstore.ErrMalformed) {
				kind = regstore.ErrMalformed
			}
			return nil, regstore.NewOpError("get", name, kind, err)
		}
		if err := v.Validate(); err != nil {
			return nil, regstore.NewOpError("get", name, regstore.ErrMalformed, err)
		}
		snap = append(snap, Entry{Name: name, Value: v})
	}

	return snap, nil
}
