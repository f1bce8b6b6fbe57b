//go:build windows

package regstore

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// registryStore is a Store backed by an open registry key. The registry
// enumerates values in the order they were created.
type registryStore struct {
	key registry.Key
	ns  Namespace
}

// RegistryOpener opens namespaces in the Windows registry. Keys are opened in
// the 64-bit view so paths that name WOW6432Node are used as written.
type RegistryOpener struct{}

// NewRegistryOpener creates a RegistryOpener.
func NewRegistryOpener() *RegistryOpener {
	return &RegistryOpener{}
}

func hiveKey(h string) (registry.Key, error) {
	short, ok := canonicalHive(h)
	if !ok {
		return 0, fmt.Errorf("unknown hive %q", h)
	}
	switch short {
	case "HKCU":
		return registry.CURRENT_USER, nil
	default:
		return registry.LOCAL_MACHINE, nil
	}
}

// Open creates or opens the subkey for ns.
func (o *RegistryOpener) Open(ns Namespace) (Handle, error) {
	if err := ns.Validate(); err != nil {
		return nil, NewOpError("open", ns.String(), ErrAccess, err)
	}
	root, err := hiveKey(ns.Hive)
	if err != nil {
		return nil, NewOpError("open", ns.String(), ErrAccess, err)
	}

	access := uint32(registry.QUERY_VALUE | registry.SET_VALUE | registry.WOW64_64KEY)
	key, _, err := registry.CreateKey(root, ns.Path, access)
	if err != nil {
		return nil, NewOpError("open", ns.String(), ErrAccess, err)
	}
	return &registryStore{key: key, ns: ns}, nil
}

// ValueNames returns every value name in enumeration order.
func (s *registryStore) ValueNames() ([]string, error) {
	names, err := s.key.ReadValueNames(0)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// GetValue reads name with the getter matching its registry type.
func (s *registryStore) GetValue(name string) (Value, error) {
	_, valtype, err := s.key.GetValue(name, nil)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Value{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return Value{}, err
	}

	switch valtype {
	case registry.DWORD:
		n, _, err := s.key.GetIntegerValue(name)
		if err != nil {
			return Value{}, err
		}
		return DWord(uint32(n)), nil
	case registry.QWORD:
		n, _, err := s.key.GetIntegerValue(name)
		if err != nil {
			return Value{}, err
		}
		return QWord(n), nil
	case registry.SZ:
		str, _, err := s.key.GetStringValue(name)
		if err != nil {
			return Value{}, err
		}
		return String(str), nil
	case registry.EXPAND_SZ:
		str, _, err := s.key.GetStringValue(name)
		if err != nil {
			return Value{}, err
		}
		return ExpandString(str), nil
	case registry.MULTI_SZ:
		list, _, err := s.key.GetStringsValue(name)
		if err != nil {
			return Value{}, err
		}
		return MultiString(list...), nil
	case registry.BINARY:
		b, _, err := s.key.GetBinaryValue(name)
		if err != nil {
			return Value{}, err
		}
		return Binary(b), nil
	default:
		return Value{}, fmt.Errorf("%w: registry type %d", ErrUnsupportedKind, valtype)
	}
}

// SetValue writes v with the setter matching its kind.
func (s *registryStore) SetValue(name string, v Value) error {
	if err := v.Validate(); err != nil {
		return err
	}
	switch v.Kind {
	case KindDWord:
		return s.key.SetDWordValue(name, uint32(v.Number))
	case KindQWord:
		return s.key.SetQWordValue(name, v.Number)
	case KindString:
		return s.key.SetStringValue(name, v.Text)
	case KindExpandString:
		return s.key.SetExpandStringValue(name, v.Text)
	case KindMultiString:
		return s.key.SetStringsValue(name, v.List)
	case KindBinary:
		return s.key.SetBinaryValue(name, v.Bytes)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, v.Kind)
	}
}

// DeleteValue removes name from the key.
func (s *registryStore) DeleteValue(name string) error {
	if err := s.key.DeleteValue(name); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return err
	}
	return nil
}

// Close releases the registry key.
func (s *registryStore) Close() error {
	return s.key.Close()
}
