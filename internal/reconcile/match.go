package reconcile

import "strings"

// Matcher reports whether an existing value name is an instance of the self entry.
type Matcher func(name string) bool

// ManifestMatcher matches names that are the manifest file name itself or a
// path ending in it, with either separator. Comparison is case-sensitive.
func ManifestMatcher(manifest string) Matcher {
	if manifest == "" {
		return func(string) bool { return false }
	}
	return func(name string) bool {
		return name == manifest ||
			strings.HasSuffix(name, `\`+manifest) ||
			strings.HasSuffix(name, "/"+manifest)
	}
}

// SelfKey joins an install directory and a manifest file name into the value
// name a loader expects. Backslash-style directories are joined with a
// backslash, anything else with a slash.
func SelfKey(installDir, manifest string) string {
	if installDir == "" {
		return manifest
	}
	sep := "/"
	if strings.Contains(installDir, `\`) {
		sep = `\`
	}
	return strings.TrimRight(installDir, `\/`) + sep + manifest
}
