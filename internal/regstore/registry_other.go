//go:build !windows

package regstore

// RegistryOpener is unavailable outside Windows; Open always fails.
type RegistryOpener struct{}

// NewRegistryOpener creates a RegistryOpener.
func NewRegistryOpener() *RegistryOpener {
	return &RegistryOpener{}
}

// Open returns ErrUnsupported.
func (o *RegistryOpener) Open(ns Namespace) (Handle, error) {
	return nil, NewOpError("open", ns.String(), ErrAccess, ErrUnsupported)
}
