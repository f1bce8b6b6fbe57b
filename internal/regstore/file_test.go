package regstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/layerorder/internal/fsops"
)

var testNS = Namespace{Hive: "HKLM", Path: `SOFTWARE\Khronos\OpenXR\1\ApiLayers\Implicit`}

func TestFileOpener_PathFor(t *testing.T) {
	o := NewFileOpener(fsops.NewRealFS(), "/root")

	path, err := o.PathFor(testNS)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/root", "HKLM", "SOFTWARE", "Khronos", "OpenXR", "1", "ApiLayers", "Implicit.json"), path)

	path, err = o.PathFor(Namespace{Hive: "HKEY_CURRENT_USER", Path: "Software/Layers"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/root", "HKCU", "Software", "Layers.json"), path)

	_, err = o.PathFor(Namespace{Hive: "HKLM", Path: `SOFTWARE\..\..\etc`})
	assert.Error(t, err)
}

func TestFileStore_PersistsOrderAndValues(t *testing.T) {
	root := t.TempDir()
	o := NewFileOpener(fsops.NewRealFS(), root)

	h, err := o.Open(testNS)
	require.NoError(t, err)

	names, err := h.ValueNames()
	require.NoError(t, err)
	assert.Empty(t, names, "new namespace starts empty")

	values := map[string]Value{
		`C:\Other\layerB.json`: DWord(1),
		`C:\Other\layerA.json`: QWord(1 << 40),
		`C:\Other\notes`:       MultiString("x", "y"),
		`C:\Other\blob`:        Binary([]byte{0, 255}),
	}
	order := []string{`C:\Other\layerB.json`, `C:\Other\layerA.json`, `C:\Other\notes`, `C:\Other\blob`}
	for _, name := range order {
		require.NoError(t, h.SetValue(name, values[name]))
	}
	require.NoError(t, h.DeleteValue(`C:\Other\layerA.json`))
	require.NoError(t, h.SetValue(`C:\Other\layerA.json`, values[`C:\Other\layerA.json`]))
	require.NoError(t, h.Close())

	reopened, err := o.Open(testNS)
	require.NoError(t, err)

	names, err = reopened.ValueNames()
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\Other\layerB.json`, `C:\Other\notes`, `C:\Other\blob`, `C:\Other\layerA.json`}, names)

	for name, want := range values {
		got, err := reopened.GetValue(name)
		require.NoError(t, err, name)
		assert.True(t, want.Equal(got), "%s: got %s, want %s", name, got, want)
	}
}

func TestFileStore_Errors(t *testing.T) {
	root := t.TempDir()
	o := NewFileOpener(fsops.NewRealFS(), root)

	t.Run("missing names", func(t *testing.T) {
		h, err := o.Open(testNS)
		require.NoError(t, err)
		_, err = h.GetValue("nope")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, h.DeleteValue("nope"), ErrNotFound)
	})

	t.Run("unknown kind is malformed per entry", func(t *testing.T) {
		ns := Namespace{Hive: "HKLM", Path: `SOFTWARE\Broken`}
		path, err := o.PathFor(ns)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		raw := `{"namespace":{"hive":"HKLM","path":"SOFTWARE\\Broken"},"entries":[` +
			`{"name":"ok","kind":"dword","number":3},{"name":"bad","kind":"link"}]}`
		require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

		h, err := o.Open(ns)
		require.NoError(t, err)

		names, err := h.ValueNames()
		require.NoError(t, err)
		assert.Equal(t, []string{"ok", "bad"}, names)

		v, err := h.GetValue("ok")
		require.NoError(t, err)
		assert.Equal(t, DWord(3), v)

		_, err = h.GetValue("bad")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("corrupt file is an access error", func(t *testing.T) {
		ns := Namespace{Hive: "HKLM", Path: `SOFTWARE\Corrupt`}
		path, err := o.PathFor(ns)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		_, err = o.Open(ns)
		assert.ErrorIs(t, err, ErrAccess)
	})
}
