package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifestMatcher(t *testing.T) {
	m := ManifestMatcher("XR_APILAYER_MBUCCHIA_vulkan_d3d12_interop.json")

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"windows path", `C:\Program Files\Layer\XR_APILAYER_MBUCCHIA_vulkan_d3d12_interop.json`, true},
		{"slash path", `/opt/layer/XR_APILAYER_MBUCCHIA_vulkan_d3d12_interop.json`, true},
		{"bare name", `XR_APILAYER_MBUCCHIA_vulkan_d3d12_interop.json`, true},
		{"32-bit manifest", `C:\Layer\XR_APILAYER_MBUCCHIA_vulkan_d3d12_interop-32.json`, false},
		{"prefix glued to name", `C:\Layer\oldXR_APILAYER_MBUCCHIA_vulkan_d3d12_interop.json`, false},
		{"different case", `C:\Layer\xr_apilayer_mbucchia_vulkan_d3d12_interop.json`, false},
		{"other layer", `C:\Toolkit\XR_APILAYER_NOVENDOR_toolkit.json`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m(tt.key))
		})
	}

	t.Run("empty manifest matches nothing", func(t *testing.T) {
		empty := ManifestMatcher("")
		assert.False(t, empty(`C:\x\`))
		assert.False(t, empty(""))
	})
}

func TestSelfKey(t *testing.T) {
	tests := []struct {
		dir, manifest, want string
	}{
		{`C:\Program Files\Layer`, "l.json", `C:\Program Files\Layer\l.json`},
		{`C:\Program Files\Layer\`, "l.json", `C:\Program Files\Layer\l.json`},
		{"/opt/layer/", "l.json", "/opt/layer/l.json"},
		{"/", "l.json", "/l.json"},
		{"", "l.json", "l.json"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := SelfKey(tt.dir, tt.manifest)
			assert.Equal(t, tt.want, got)
			assert.True(t, ManifestMatcher(tt.manifest)(got), "self key must match its own manifest")
		})
	}
}
