package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultCacheDir is relative to the scan root.
	DefaultCacheDir = ".droidconf/cache/lint"
	engineVersion   = "1"
)

// Cache provides content-addressed lint result caching.
type Cache struct {
	Dir     string
	Enabled bool
}

// NewCache returns a cache rooted at dir, or at DefaultCacheDir under rootDir
// when dir is empty. Relative dirs are taken from rootDir.
func NewCache(rootDir, dir string, enabled bool) *Cache {
	if dir == "" {
		dir = DefaultCacheDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(rootDir, dir)
	}
	return &Cache{Dir: dir, Enabled: enabled}
}

// cacheEntry stores cached findings for a descriptor+module combination.
type cacheEntry struct {
	Findings []Finding `json:"findings"`
}

// Key computes a cache key from the descriptor source, module name, module
// options and the toolchain variables the descriptor was resolved with.
func (c *Cache) Key(content []byte, moduleName, configJSON, varsJSON string) string {
	h := sha256.New()
	for _, part := range [][]byte{content, []byte(moduleName), []byte(configJSON), []byte(varsJSON), []byte(engineVersion)} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves cached findings. Entries older than maxAge miss; a zero maxAge
// never expires.
func (c *Cache) Get(key string, maxAge time.Duration) ([]Finding, bool) {
	if !c.Enabled {
		return nil, false
	}

	path := c.path(key)
	if maxAge > 0 {
		info, err := os.Stat(path)
		if err != nil || time.Since(info.ModTime()) > maxAge {
			return nil, false
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	return entry.Findings, true
}

// Put stores findings in the cache.
func (c *Cache) Put(key string, findings []Finding) error {
	if !c.Enabled {
		return nil
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := json.Marshal(cacheEntry{Findings: findings})
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Clear removes the entire cache directory.
func (c *Cache) Clear() error {
	return os.RemoveAll(c.Dir)
}

// path returns the filesystem path for a cache key.
// Uses 2-char prefix subdirectory to avoid huge flat directories.
func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key[:2], key+".json")
}

// EnsureGitignore adds .droidconf/ to .gitignore if not already present.
func EnsureGitignore(rootDir string) error {
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	const entry = ".droidconf/"

	data, err := os.ReadFile(gitignorePath)
	if err == nil {
		for _, line := range splitLines(data) {
			if line == entry || line == "/"+entry {
				return nil
			}
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	// Add newline before entry if file doesn't end with one
	if len(data) > 0 && data[len(data)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = f.WriteString(entry + "\n")
	return err
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			line := string(data[start:i])
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}
