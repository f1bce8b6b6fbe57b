package reconcile

import (
	"errors"

	"github.com/danieljhkim/layerorder/internal/regstore"
)

// Reconcile makes self the first entry of st, keeping every other entry in
// order and dropping stale self entries.
func Reconcile(st regstore.Store, self Self) error {
	if err := self.Validate(); err != nil {
		return err
	}
	snap, err := Take(st)
	if err != nil {
		return err
	}
	return Apply(st, snap, BuildPlan(snap, self))
}

// Apply writes plan to st, where snap is what st held when the plan was built.
func Apply(st regstore.Store, snap Snapshot, plan *Plan) error {
	return Rewrite(st, snap, plan.Entries())
}

// Rewrite deletes every entry of current from st, then writes entries in
// order. entries must have unique names.
//
// Every entry is validated before the first delete. After that a failure is
// returned as is and the store holds whatever was written so far.
func Rewrite(st regstore.Store, current Snapshot, entries Snapshot) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := e.Value.Validate(); err != nil {
			return regstore.NewOpError("set", e.Name, regstore.ErrMalformed, err)
		}
		if _, dup := seen[e.Name]; dup {
			return regstore.NewOpError("set", e.Name, regstore.ErrMalformed, errors.New("duplicate name"))
		}
		seen[e.Name] = struct{}{}
	}

	for _, e := range current {
		if err := st.DeleteValue(e.Name); err != nil {
			return regstore.NewOpError("delete", e.Name, regstore.ErrWrite, err)
		}
	}

	// Insertion order is the only priority signal, so entries are written
	// strictly in slice order.
	for _, e := range entries {
		if err := st.SetValue(e.Name, e.Value); err != nil {
			kind := regstore.ErrWrite
			if errors.Is(err, regstore.ErrMalformed) {
				kind = regstore.ErrMalformed
			}
			return regstore.NewOpError("set", e.Name, kind, err)
		}
	}

	return nil
}
