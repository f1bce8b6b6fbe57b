package regstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/layerorder/internal/fsops"
)

// storeFile is the on-disk layout of a FileStore. Entries are a list so the
// enumeration order is recorded explicitly rather than inferred.
type storeFile struct {
	Namespace Namespace   `json:"namespace"`
	Entries   []fileEntry `json:"entries"`
}

// fileEntry keeps the kind as a raw string so an unknown kind is reported
// for that entry instead of failing the whole file.
type fileEntry struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Number uint64   `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
	List   []string `json:"list,omitempty"`
	Bytes  []byte   `json:"bytes,omitempty"`
}

func (e fileEntry) value() (Value, error) {
	var k Kind
	if err := k.UnmarshalText([]byte(e.Kind)); err != nil {
		return Value{}, err
	}
	v := Value{Kind: k, Number: e.Number, Text: e.Text, List: e.List, Bytes: e.Bytes}
	if err := v.Validate(); err != nil {
		return Value{}, err
	}
	return v.Clone(), nil
}

func newFileEntry(name string, v Value) fileEntry {
	v = v.Clone()
	return fileEntry{
		Name:   name,
		Kind:   v.Kind.String(),
		Number: v.Number,
		Text:   v.Text,
		List:   v.List,
		Bytes:  v.Bytes,
	}
}

// FileStore is a Store persisted as one JSON file. Every SetValue and
// DeleteValue rewrites the file atomically.
type FileStore struct {
	fs   fsops.FS
	path string
	data storeFile
}

// ValueNames returns every value name in enumeration order.
func (s *FileStore) ValueNames() ([]string, error) {
	names := make([]string, 0, len(s.data.Entries))
	for _, e := range s.data.Entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// GetValue returns the value stored under name.
func (s *FileStore) GetValue(name string) (Value, error) {
	i := s.index(name)
	if i < 0 {
		return Value{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.data.Entries[i].value()
}

// SetValue creates or replaces the value stored under name.
func (s *FileStore) SetValue(name string, v Value) error {
	if err := v.Validate(); err != nil {
		return err
	}

	entries := append([]fileEntry(nil), s.data.Entries...)
	if i := s.index(name); i >= 0 {
		entries[i] = newFileEntry(name, v)
	} else {
		entries = append(entries, newFileEntry(name, v))
	}
	return s.save(entries)
}

// DeleteValue removes name from the store.
func (s *FileStore) DeleteValue(name string) error {
	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	entries := make([]fileEntry, 0, len(s.data.Entries)-1)
	entries = append(entries, s.data.Entries[:i]...)
	entries = append(entries, s.data.Entries[i+1:]...)
	return s.save(entries)
}

// Close is a no-op; every mutation is already on disk.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) index(name string) int {
	for i, e := range s.data.Entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// save writes entries and only then adopts them, so a failed write leaves the
// in-memory view matching the file.
func (s *FileStore) save(entries []fileEntry) error {
	next := storeFile{Namespace: s.data.Namespace, Entries: entries}
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	s.data = next
	return nil
}

// FileOpener opens FileStores below a root directory. A namespace maps to
// <root>/<hive>/<subkey segments>.json.
type FileOpener struct {
	fs   fsops.FS
	root string
}

// NewFileOpener creates a FileOpener rooted at root.
func NewFileOpener(fs fsops.FS, root string) *FileOpener {
	return &FileOpener{fs: fs, root: root}
}

// PathFor returns the file that backs ns.
func (o *FileOpener) PathFor(ns Namespace) (string, error) {
	if err := ns.Validate(); err != nil {
		return "", err
	}
	hive, _ := canonicalHive(ns.Hive)

	segments := []string{hive}
	for _, seg := range strings.FieldsFunc(ns.Path, func(r rune) bool { return r == '\\' || r == '/' }) {
		if err := o.fs.ValidateIdentifier(seg); err != nil {
			return "", fmt.Errorf("invalid subkey segment %q: %w", seg, err)
		}
		segments = append(segments, seg)
	}
	rel := filepath.Join(segments...) + ".json"
	if err := o.fs.ValidateRelPath(rel); err != nil {
		return "", err
	}
	return filepath.Join(o.root, rel), nil
}

// Open loads the store for ns, creating an empty one if the file does not exist.
func (o *FileOpener) Open(ns Namespace) (Handle, error) {
	path, err := o.PathFor(ns)
	if err != nil {
		return nil, NewOpError("open", ns.String(), ErrAccess, err)
	}

	s := &FileStore{fs: o.fs, path: path, data: storeFile{Namespace: ns, Entries: []fileEntry{}}}

	raw, err := o.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.save(s.data.Entries); err != nil {
				return nil, NewOpError("open", ns.String(), ErrAccess, err)
			}
			return s, nil
		}
		return nil, NewOpError("open", ns.String(), ErrAccess, err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, NewOpError("open", ns.String(), ErrAccess, fmt.Errorf("failed to unmarshal store: %w", err))
	}
	if s.data.Entries == nil {
		s.data.Entries = []fileEntry{}
	}
	return s, nil
}
