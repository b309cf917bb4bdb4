package toolchain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
)

// DefaultPropertiesFile is where `flutter pub get` writes flutter.versionCode,
// flutter.versionName and flutter.sdk.
const DefaultPropertiesFile = "local.properties"

// Properties serves variables from Java .properties files. Earlier files win.
type Properties struct {
	props *properties.Properties
	files []string
}

// LoadProperties reads the given files. Missing files are skipped.
func LoadProperties(files ...string) (*Properties, error) {
	merged := properties.NewProperties()
	var loaded []string
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		p, err := properties.Load(data, properties.UTF8)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		for _, k := range p.Keys() {
			if _, ok := merged.Get(k); ok {
				continue
			}
			v, _ := p.Get(k)
			if _, _, err := merged.Set(k, v); err != nil {
				return nil, fmt.Errorf("%s: %s: %w", f, k, err)
			}
		}
		loaded = append(loaded, f)
	}
	return &Properties{props: merged, files: loaded}, nil
}

func (p *Properties) Lookup(name string) (string, bool) {
	if p == nil || p.props == nil {
		return "", false
	}
	return p.props.Get(name)
}

// Files returns the files that were actually read.
func (p *Properties) Files() []string {
	if p == nil {
		return nil
	}
	return p.files
}

// FindProperties searches from dir upward to root (inclusive) for files with
// the given base names. Nearer files come first. root bounds the search; a dir
// outside root searches dir only.
func FindProperties(dir, root string, names []string) []string {
	if len(names) == 0 {
		names = []string{DefaultPropertiesFile}
	}
	dir, _ = filepath.Abs(dir)
	root, _ = filepath.Abs(root)

	var found []string
	for {
		for _, n := range names {
			candidate := filepath.Join(dir, n)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				found = append(found, candidate)
			}
		}
		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		rel, err := filepath.Rel(root, parent)
		if parent == dir || err != nil || strings.HasPrefix(rel, "..") {
			break
		}
		dir = parent
	}
	return found
}
