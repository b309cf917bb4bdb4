package lint

import (
	"path/filepath"
	"strings"
)

// MatchGlob matches a glob pattern supporting ** against a forward-slash path.
func MatchGlob(pattern, path string) bool {
	return matchGlob(filepath.ToSlash(pattern), normalizeSlashPath(path))
}

// matchGlob extends filepath.Match with "**" (zero or more path segments).
func matchGlob(pattern, path string) bool {
	if !strings.Contains(pattern, "**") {
		matched, _ := filepath.Match(pattern, path)
		return matched
	}

	idx := strings.Index(pattern, "**")
	head := strings.TrimRight(pattern[:idx], "/")
	rest := strings.TrimLeft(pattern[idx+2:], "/")

	if head != "" {
		// The head may itself hold wildcards; match it segment-aligned.
		n := strings.Count(head, "/") + 1
		parts := strings.SplitN(path, "/", n+1)
		if len(parts) < n {
			return false
		}
		if ok, _ := filepath.Match(head, strings.Join(parts[:n], "/")); !ok {
			return false
		}
		if len(parts) == n {
			path = ""
		} else {
			path = parts[n]
		}
	}

	if rest == "" {
		return true
	}

	// Try rest against every tail: "a/b/c", "b/c", "c".
	parts := strings.Split(path, "/")
	for i := range parts {
		if matchGlob(rest, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}
