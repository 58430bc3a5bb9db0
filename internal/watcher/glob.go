package watcher

import (
	"path"
	"path/filepath"
	"strings"
)

// MatchesGlobPattern reports whether a slash-separated path matches a glob
// pattern. `*` matches within one path segment, `**` matches any number of
// segments including none.
func MatchesGlobPattern(p, pattern string) bool {
	p = filepath.ToSlash(p)
	pattern = filepath.ToSlash(pattern)
	return matchSegments(splitPath(p), splitPath(pattern))
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(segs, pat []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		// `**` matches zero or more leading segments.
		if matchSegments(segs, pat[1:]) {
			return true
		}
		return len(segs) > 0 && matchSegments(segs[1:], pat)
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pat[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(segs[1:], pat[1:])
}

// ignored reports whether rel matches any of the configured ignore patterns.
func ignored(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if MatchesGlobPattern(rel, pattern) {
			return true
		}
	}
	return false
}
