package lint

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// androidBlock spots an application-level Gradle script.
var androidBlock = regexp.MustCompile(`(?m)^\s*android\s*\{`)

// IsDescriptorName reports whether base names a standalone descriptor file.
// Gradle scripts additionally need an android block; see IsDescriptor.
func IsDescriptorName(base string) bool {
	base = strings.ToLower(base)
	switch {
	case base == "build.gradle.kts":
		return true
	case strings.HasPrefix(base, "droidconf.descriptor."):
		return hasDescriptorExt(base)
	case strings.Contains(base, ".droid."):
		return hasDescriptorExt(base)
	}
	return false
}

func hasDescriptorExt(base string) bool {
	for _, ext := range []string{".yml", ".yaml", ".toml"} {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// IsDescriptor reports whether the file at path is a descriptor droidconf
// should load.
func IsDescriptor(path string) bool {
	base := filepath.Base(path)
	if !IsDescriptorName(base) {
		return false
	}
	if strings.ToLower(base) != "build.gradle.kts" {
		return true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return androidBlock.Match(data) && !bytes.Contains(data, []byte("com.android.library"))
}

// Discover walks root and returns descriptor paths, joined onto root and sorted.
// Hidden directories and paths matching exclude are skipped.
func Discover(root string, exclude []string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			base := filepath.Base(rel)
			if strings.HasPrefix(base, ".") && base != "." {
				return filepath.SkipDir
			}
			if rel != "." && matchAny(exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || matchAny(exclude, rel) {
			return nil
		}
		if IsDescriptor(path) {
			found = append(found, path)
		}
		return nil
	})
	sort.Strings(found)
	return found, err
}

// Expand turns command-line arguments into descriptor paths. Directories are
// discovered; files are taken as given. Config globs are expanded against root.
func Expand(root string, args []string, globs []string, exclude []string) ([]string, error) {
	if len(args) == 0 && len(globs) > 0 {
		return expandGlobs(root, globs, exclude)
	}
	if len(args) == 0 {
		args = []string{root}
	}
	var out []string
	seen := make(map[string]bool)
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		paths := []string{a}
		if info.IsDir() {
			if paths, err = Discover(a, exclude); err != nil {
				return nil, err
			}
		}
		for _, p := range paths {
			if clean := filepath.Clean(p); !seen[clean] {
				seen[clean] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func expandGlobs(root string, globs []string, exclude []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			base := filepath.Base(rel)
			if strings.HasPrefix(base, ".") && base != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(exclude, rel) || seen[rel] {
			return nil
		}
		for _, g := range globs {
			if MatchGlob(g, rel) {
				seen[rel] = true
				out = append(out, path)
				break
			}
		}
		return nil
	})
	return out, err
}
