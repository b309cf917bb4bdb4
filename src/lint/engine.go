package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sofmeright/droidconf/src/config"
	"golang.org/x/sync/semaphore"
)

// Engine orchestrates lint modules across descriptors.
type Engine struct {
	Config  config.LintConfig
	Modules []Module
	Cache   *Cache
	Logger  hclog.Logger

	CacheHits   atomic.Int64
	CacheMisses atomic.Int64
}

// NewEngine creates a lint engine with the selected modules.
func NewEngine(cfg config.LintConfig, moduleNames []string, skipNames []string, logger hclog.Logger, cache *Cache) (*Engine, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	skipSet := make(map[string]bool, len(skipNames))
	for _, name := range skipNames {
		if _, err := Get(name); err != nil {
			return nil, err
		}
		skipSet[name] = true
	}

	var modules []Module

	if len(moduleNames) > 0 {
		// Explicit module selection
		for _, name := range moduleNames {
			if skipSet[name] {
				continue
			}
			m, err := Get(name)
			if err != nil {
				return nil, err
			}
			if err := configureModule(m, cfg, name); err != nil {
				return nil, err
			}
			modules = append(modules, m)
		}
	} else {
		for _, name := range All() {
			if skipSet[name] {
				continue
			}
			m, err := Get(name)
			if err != nil {
				return nil, err
			}

			enabled := m.DefaultEnabled()
			if mc, ok := cfg.Modules[name]; ok && mc.Enabled != nil {
				enabled = *mc.Enabled
			}
			if !enabled {
				continue
			}
			if err := configureModule(m, cfg, name); err != nil {
				return nil, err
			}
			modules = append(modules, m)
		}
	}

	if len(modules) == 0 {
		return nil, fmt.Errorf("no lint modules selected")
	}

	return &Engine{
		Config:  cfg,
		Modules: modules,
		Cache:   cache,
		Logger:  logger.Named("lint"),
	}, nil
}

// ModuleStats holds per-module scan statistics.
type ModuleStats struct {
	Name     string
	Files    int
	Cached   int
	Findings int
	Critical int
	Warnings int
	Elapsed  time.Duration
}

func (s *ModuleStats) add(results []Finding) {
	for _, r := range results {
		s.Findings++
		switch r.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warnings++
		}
	}
}

// Run executes all modules against the given targets and returns findings.
func (e *Engine) Run(ctx context.Context, targets []*Target) ([]Finding, error) {
	findings, _, err := e.RunWithStats(ctx, targets)
	return findings, err
}

// RunWithStats executes all modules and returns sorted findings plus
// per-module statistics in module order.
func (e *Engine) RunWithStats(ctx context.Context, targets []*Target) ([]Finding, []ModuleStats, error) {
	var (
		mu       sync.Mutex
		findings []Finding
		wg       sync.WaitGroup
		errs     []error
	)

	sem := semaphore.NewWeighted(int64(runtime.NumCPU() * 2))

	// Per-module stat counters (index matches e.Modules)
	modStats := make([]ModuleStats, len(e.Modules))
	for i, m := range e.Modules {
		modStats[i].Name = m.Name()
	}

	record := func(idx int, results []Finding, cached bool, elapsed time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		modStats[idx].Files++
		modStats[idx].Elapsed += elapsed
		if cached {
			modStats[idx].Cached++
		}
		modStats[idx].add(results)
		findings = append(findings, results...)
	}

dispatch:
	for _, target := range targets {
		if e.isExcluded(target.Path) {
			e.Logger.Debug("excluded", "path", target.Path)
			continue
		}

		for mi, mod := range e.Modules {
			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				break dispatch
			}
			wg.Add(1)
			go func(m Module, t *Target, idx int) {
				defer wg.Done()
				defer sem.Release(1)

				// Per-module exclusion
				if e.isModuleExcluded(m.Name(), t.Path) {
					return
				}

				useCache, maxAge := e.cachePolicy(m)
				var key string
				if useCache {
					key = e.Cache.Key(t.Source, m.Name(), e.moduleConfigJSON(m.Name()), variablesJSON(t.Variables))
					if cached, ok := e.Cache.Get(key, maxAge); ok {
						e.CacheHits.Add(1)
						record(idx, cached, true, 0)
						return
					}
					e.CacheMisses.Add(1)
				}

				start := time.Now()
				results, err := m.Check(ctx, t)
				elapsed := time.Since(start)
				if err != nil {
					mu.Lock()
					modStats[idx].Files++
					errs = append(errs, fmt.Errorf("%s: %s: %w", m.Name(), t.Path, err))
					mu.Unlock()
					return
				}
				record(idx, results, false, elapsed)

				// Cache even empty results (clean pass).
				if useCache {
					if cacheErr := e.Cache.Put(key, results); cacheErr != nil {
						e.Logger.Warn("cache write failed", "module", m.Name(), "path", t.Path, "error", cacheErr)
					}
				}
			}(mod, target, mi)
		}
	}

	wg.Wait()

	SortFindings(findings)
	e.Logger.Debug("lint finished", "targets", len(targets), "findings", len(findings),
		"cache_hits", e.CacheHits.Load(), "cache_misses", e.CacheMisses.Load())

	if len(errs) > 0 {
		return findings, modStats, fmt.Errorf("%d module errors (first: %w)", len(errs), errs[0])
	}

	return findings, modStats, nil
}

// cachePolicy resolves whether results of m may be cached and for how long.
// Modules with external state declare a TTL; all others cache forever.
func (e *Engine) cachePolicy(m Module) (bool, time.Duration) {
	if e.Cache == nil || !e.Cache.Enabled {
		return false, 0
	}
	tm, ok := m.(CacheTTLModule)
	if !ok {
		return true, 0
	}
	ttl := tm.CacheTTL()
	if ttl < 0 {
		return false, 0
	}
	return true, ttl
}

// ModuleNames returns the names of all active modules in this engine.
func (e *Engine) ModuleNames() []string {
	names := make([]string, len(e.Modules))
	for i, m := range e.Modules {
		names[i] = m.Name()
	}
	return names
}

// normalizeSlashPath converts a path to forward slashes and strips leading "./".
func normalizeSlashPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return p
}

// matchExcludePattern matches a single exclude pattern against a normalized path.
// Patterns containing "/" or "**" match against the full path; others match base name only.
func matchExcludePattern(pattern, normPath, baseName string) bool {
	pattern = filepath.ToSlash(pattern)
	if strings.Contains(pattern, "/") || strings.Contains(pattern, "**") {
		return matchGlob(pattern, normPath)
	}
	return matchGlob(pattern, baseName)
}

func matchAny(patterns []string, path string) bool {
	if len(patterns) == 0 {
		return false
	}
	normPath := normalizeSlashPath(path)
	baseName := filepath.Base(normPath)
	for _, pattern := range patterns {
		if matchExcludePattern(pattern, normPath, baseName) {
			return true
		}
	}
	return false
}

func (e *Engine) isExcluded(path string) bool {
	return matchAny(e.Config.Exclude, path)
}

// isModuleExcluded checks per-module exclude patterns from config.
// Engine-wide isExcluded prevents descriptors from being queued at all;
// module excludes prevent only that module from running on matching files.
func (e *Engine) isModuleExcluded(moduleName, path string) bool {
	mc, ok := e.Config.Modules[moduleName]
	if !ok {
		return false
	}
	return matchAny(mc.Exclude, path)
}

// configureModule passes YAML options to modules that implement ConfigurableModule.
func configureModule(m Module, cfg config.LintConfig, name string) error {
	cm, ok := m.(ConfigurableModule)
	if !ok {
		return nil
	}
	mc, exists := cfg.Modules[name]
	if !exists || mc.Options == nil {
		// Call with nil so the module can apply defaults.
		return cm.Configure(nil)
	}
	return cm.Configure(mc.Options)
}

func (e *Engine) moduleConfigJSON(name string) string {
	mc, ok := e.Config.Modules[name]
	if !ok || mc.Options == nil {
		return "{}"
	}
	data, err := json.Marshal(mc.Options)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// variablesJSON renders toolchain variables with sorted keys.
func variablesJSON(vars map[string]string) string {
	if len(vars) == 0 {
		return "{}"
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return "{}"
	}
	return string(data)
}
