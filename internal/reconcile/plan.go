package reconcile

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/layerorder/internal/regstore"
)

// ErrInvalidSelf indicates a Self that cannot be installed.
var ErrInvalidSelf = errors.New("invalid self entry")

// Self describes the entry that must enumerate first.
type Self struct {
	// Name is the exact value name written for this run
	Name string

	// Value is written under Name
	Value regstore.Value

	// Match recognizes stale instances of the self entry
	Match Matcher
}

// Validate checks that s can be written.
func (s Self) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSelf)
	}
	if s.Match == nil {
		return fmt.Errorf("%w: no matcher for %q", ErrInvalidSelf, s.Name)
	}
	if err := s.Value.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSelf, err)
	}
	return nil
}

// stale reports whether a snapshot entry must not be written back.
// An exact name match is always stale so the self entry cannot be overwritten
// in place by its previous value.
func (s Self) stale(name string) bool {
	return name == s.Name || s.Match(name)
}

// Plan is the ordering a reconcile will write.
type Plan struct {
	// Self is written first
	Self Entry

	// Keep are the snapshot entries written after Self, in snapshot order
	Keep []Entry

	// Dropped are the snapshot entries recognized as stale self entries
	Dropped []Entry
}

// BuildPlan computes the new ordering for snap. It does not touch any store.
func BuildPlan(snap Snapshot, self Self) *Plan {
	p := &Plan{
		Self:    Entry{Name: self.Name, Value: self.Value.Clone()},
		Keep:    make([]Entry, 0, len(snap)),
		Dropped: []Entry{},
	}
	for _, e := range snap {
		if self.stale(e.Name) {
			p.Dropped = append(p.Dropped, e)
			continue
		}
		p.Keep = append(p.Keep, e)
	}
	return p
}

// Entries returns the full ordering: Self followed by Keep.
func (p *Plan) Entries() Snapshot {
	out := make(Snapshot, 0, len(p.Keep)+1)
	out = append(out, p.Self)
	return append(out, p.Keep...)
}

// Settled reports whether snap already equals the planned ordering.
func (p *Plan) Settled(snap Snapshot) bool {
	return p.Entries().Equal(snap)
}
