package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/sofmeright/droidconf/src/config"
	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/toolchain"
	"golang.org/x/sync/errgroup"
)

// Loader turns descriptor files into lint targets, resolving toolchain
// variables per descriptor.
type Loader struct {
	RootDir   string
	Toolchain config.ToolchainConfig
	Logger    hclog.Logger
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Limit caps concurrent loads; zero means GOMAXPROCS.
	Limit int
}

func (l *Loader) logger() hclog.Logger {
	if l.Logger == nil {
		return hclog.NewNullLogger()
	}
	return l.Logger
}

// Rel returns path relative to the loader root in slash form. Paths outside
// the root are returned cleaned but otherwise unchanged.
func (l *Loader) Rel(path string) string {
	root, err := filepath.Abs(l.RootDir)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}

// Provider builds the variable chain for the descriptor at path: configured
// variables with matching overrides, the environment, properties files found
// upward from the descriptor, then the Flutter defaults.
func (l *Loader) Provider(path string) (toolchain.Provider, error) {
	vars, err := l.Toolchain.VariablesFor(l.Rel(path), MatchGlob)
	if err != nil {
		return nil, err
	}
	chain := toolchain.Chain{
		toolchain.Static(vars),
		toolchain.Env{Prefix: l.Toolchain.EnvPrefix, Getenv: l.LookupEnv},
	}

	if files := toolchain.FindProperties(filepath.Dir(path), l.RootDir, l.Toolchain.PropertiesFiles); len(files) > 0 {
		props, err := toolchain.LoadProperties(files...)
		if err != nil {
			return nil, err
		}
		l.logger().Trace("properties loaded", "descriptor", path, "files", props.Files())
		chain = append(chain, props)
	}
	if l.Toolchain.UseDefaults {
		chain = append(chain, toolchain.Defaults())
	}
	return chain, nil
}

// Load reads one descriptor. Parse and resolution failures are recorded on
// the target; only I/O and configuration errors are returned.
func (l *Loader) Load(ctx context.Context, path string) (*Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if descriptor.DetectFormat(path) == "" {
		return nil, fmt.Errorf("%s: unsupported descriptor format", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	t := &Target{Path: l.Rel(path), AbsPath: abs, Source: data}

	d, err := descriptor.Parse(path, data)
	if err != nil {
		l.logger().Debug("descriptor did not parse", "path", t.Path, "error", err)
		t.Err = err
		return t, nil
	}
	t.Descriptor = d

	provider, err := l.Provider(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Path, err)
	}
	t.Variables = toolchain.Snapshot(provider, d.References())

	cfg, err := descriptor.Resolve(d, provider)
	if err != nil {
		l.logger().Debug("descriptor did not resolve", "path", t.Path, "error", err)
		t.Err = err
		return t, nil
	}
	t.Config = cfg
	return t, nil
}

// LoadAll loads descriptors concurrently. Targets come back in input order.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]*Target, error) {
	targets := make([]*Target, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit())
	for i, p := range paths {
		g.Go(func() error {
			t, err := l.Load(ctx, p)
			if err != nil {
				return err
			}
			targets[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return targets, nil
}

// ValidateAll loads and validates each descriptor on its own goroutine.
// errs[i] is the verdict for paths[i]; the returned error is reserved for I/O
// and configuration failures.
func (l *Loader) ValidateAll(ctx context.Context, paths []string) ([]error, error) {
	errs := make([]error, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit())
	for i, p := range paths {
		g.Go(func() error {
			t, err := l.Load(ctx, p)
			if err != nil {
				return err
			}
			errs[i] = t.Validate()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return errs, nil
}

func (l *Loader) limit() int {
	if l.Limit > 0 {
		return l.Limit
	}
	return runtime.GOMAXPROCS(0)
}
