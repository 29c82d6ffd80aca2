package ports

// IgnoreMatcher answers whether a path is excluded by ignore rules.
// Paths may be absolute or relative to the matcher's root.
type IgnoreMatcher interface {
	IsIgnored(path string) bool
	// IsIgnoredDir is IsIgnored for a path known to be a directory, so
	// directory-only patterns ("build/") apply.
	IsIgnoredDir(path string) bool
}
