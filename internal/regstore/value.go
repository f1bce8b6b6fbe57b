package regstore

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// Kind is the type of a stored value. The numeric values match the Windows
// registry value types so the registry backend can map them directly.
type Kind uint32

// Supported kinds.
const (
	KindString       Kind = 1  // REG_SZ
	KindExpandString Kind = 2  // REG_EXPAND_SZ
	KindBinary       Kind = 3  // REG_BINARY
	KindDWord        Kind = 4  // REG_DWORD
	KindMultiString  Kind = 7  // REG_MULTI_SZ
	KindQWord        Kind = 11 // REG_QWORD
)

var kindNames = map[Kind]string{
	KindString:       "string",
	KindExpandString: "expand_string",
	KindBinary:       "binary",
	KindDWord:        "dword",
	KindMultiString:  "multi_string",
	KindQWord:        "qword",
}

// String returns the lower-case kind name, or "kind(N)" for unknown kinds.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint32(k))
}

// Supported reports whether values of this kind can be round-tripped.
func (k Kind) Supported() bool {
	_, ok := kindNames[k]
	return ok
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Supported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, n := range kindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
}

// Value is a typed value. Only the payload field matching Kind is meaningful.
type Value struct {
	Kind Kind `json:"kind"`

	// Number holds dword and qword payloads
	Number uint64 `json:"number,omitempty"`

	// Text holds string and expand_string payloads
	Text string `json:"text,omitempty"`

	// List holds multi_string payloads
	List []string `json:"list,omitempty"`

	// Bytes holds binary payloads
	Bytes []byte `json:"bytes,omitempty"`
}

// DWord returns a 32-bit integer value.
func DWord(v uint32) Value { return Value{Kind: KindDWord, Number: uint64(v)} }

// QWord returns a 64-bit integer value.
func QWord(v uint64) Value { return Value{Kind: KindQWord, Number: v} }

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Text: s} }

// ExpandString returns a string value containing unexpanded environment references.
func ExpandString(s string) Value { return Value{Kind: KindExpandString, Text: s} }

// MultiString returns a string list value.
func MultiString(list ...string) Value {
	return Value{Kind: KindMultiString, List: append([]string(nil), list...)}
}

// Binary returns a raw byte value.
func Binary(b []byte) Value { return Value{Kind: KindBinary, Bytes: append([]byte(nil), b...)} }

// Validate reports whether v can be written to a store as is.
func (v Value) Validate() error {
	if !v.Kind.Supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, v.Kind)
	}
	if v.Kind == KindDWord && v.Number > math.MaxUint32 {
		return fmt.Errorf("%w: dword payload %d overflows 32 bits", ErrMalformed, v.Number)
	}
	return nil
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	out := v
	if v.List != nil {
		out.List = append([]string(nil), v.List...)
	}
	if v.Bytes != nil {
		out.Bytes = append([]byte(nil), v.Bytes...)
	}
	return out
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindDWord, KindQWord:
		return v.Number == o.Number
	case KindString, KindExpandString:
		return v.Text == o.Text
	case KindMultiString:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	case KindBinary:
		return string(v.Bytes) == string(o.Bytes)
	default:
		return false
	}
}

// String renders the payload for display.
func (v Value) String() string {
	switch v.Kind {
	case KindDWord, KindQWord:
		return fmt.Sprintf("%s:%d", v.Kind, v.Number)
	case KindString, KindExpandString:
		return fmt.Sprintf("%s:%q", v.Kind, v.Text)
	case KindMultiString:
		return fmt.Sprintf("%s:%q", v.Kind, v.List)
	case KindBinary:
		return fmt.Sprintf("%s:%s", v.Kind, hex.EncodeToString(v.Bytes))
	default:
		return v.Kind.String()
	}
}
