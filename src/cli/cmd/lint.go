package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/droidconf/src/config"
	"github.com/sofmeright/droidconf/src/lint"
	_ "github.com/sofmeright/droidconf/src/lint/modules"
	"github.com/sofmeright/droidconf/src/output"
)

var (
	lintLevel    string
	lintModules  []string
	lintNoModule []string
	lintNoCache  bool
	lintAll      bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run advisory checks over build descriptors",
	Long: `Run cache-aware lint rules over build descriptors.

With --level changed only descriptors changed relative to the target branch
are scanned. Use --level full or --all to scan everything.

Rules run in parallel and results are cached by descriptor content, rule
options and resolved toolchain variables.`,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().StringVar(&lintLevel, "level", "", "scan level: changed or full (default: from config)")
	lintCmd.Flags().StringSliceVar(&lintModules, "module", nil, "run only these rules (comma-separated)")
	lintCmd.Flags().StringSliceVar(&lintNoModule, "no-module", nil, "skip these rules (comma-separated)")
	lintCmd.Flags().BoolVar(&lintNoCache, "no-cache", false, "disable cache (clear and rescan)")
	lintCmd.Flags().BoolVar(&lintAll, "all", false, "scan all descriptors (shorthand for --level full)")

	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	level := config.Level(lintLevel)
	if lintAll {
		level = config.LevelFull
	}
	// CLI flag > config > full
	if level == "" {
		level = cfg.Lint.Level
	}
	if level == "" {
		level = config.LevelFull
	}
	if level != config.LevelChanged && level != config.LevelFull {
		return fmt.Errorf("unknown lint level %q (want changed or full)", level)
	}
	failOn, err := lint.ParseSeverity(cfg.Lint.FailOn)
	if err != nil {
		return fmt.Errorf("lint.fail_on: %w", err)
	}

	root, err := scanRoot()
	if err != nil {
		return err
	}

	cache := lint.NewCache(root, cfg.Lint.CacheDir, !lintNoCache)
	if lintNoCache {
		if err := cache.Clear(); err != nil {
			logger.Debug("cache clear failed", "error", err)
		}
	} else if err := lint.EnsureGitignore(root); err != nil {
		logger.Debug("gitignore not updated", "error", err)
	}

	engine, err := lint.NewEngine(cfg.Lint, lintModules, lintNoModule, logger, cache)
	if err != nil {
		return err
	}
	logger.Debug("rules selected", "modules", engine.ModuleNames())

	paths, err := collectDescriptors(root, args)
	if err != nil {
		return err
	}
	loader := newLoader(root)

	if level == config.LevelChanged {
		paths = changedDescriptors(cmd, loader, root, paths)
	}

	w := cmd.OutOrStdout()
	color := output.UseColor()
	output.ContextBlock(w, output.CIContext())

	start := time.Now()
	targets, err := loader.LoadAll(ctx, paths)
	if err != nil {
		return err
	}
	findings, stats, runErr := engine.RunWithStats(ctx, targets)
	elapsed := time.Since(start)

	files := make([]string, len(targets))
	var totalCached int
	for i, t := range targets {
		files[i] = t.Path
	}
	for _, ms := range stats {
		totalCached += ms.Cached
	}
	tally := output.Count(findings)

	if output.IsCI() {
		report := output.BuildLintJUnit(findings, files, stats, failOn, elapsed)
		if err := output.WriteJUnit(cfg.Report.JUnitDir, "lint.xml", report); err != nil {
			logger.Warn("junit report not written", "error", err)
		}
	}

	output.SectionStart(w, "dc_lint", "Lint")
	sec := output.NewSection(w, "Lint", elapsed, color)
	output.LintTable(sec, stats)
	sec.Separator()
	sec.Row("%-14s%6d  %6d  %8d  %8d", "total", len(targets), totalCached, tally.Total(), tally.Critical)
	sec.Close()
	output.SectionEnd(w, "dc_lint")

	if len(findings) > 0 {
		output.SectionStartCollapsed(w, "dc_findings", "Findings")
		fSec := output.NewSection(w, "Findings", 0, color)
		output.SectionFindings(fSec, findings, color)
		fSec.Separator()
		fSec.Row("%s", output.FindingsSummaryLine(tally, len(targets), color))
		fSec.Close()
		output.SectionEnd(w, "dc_findings")
	}

	if cache.Enabled {
		logger.Debug("cache", "hits", engine.CacheHits.Load(), "misses", engine.CacheMisses.Load())
	}
	var failed error
	if n := lint.CountAtLeast(findings, failOn); n > 0 {
		failed = fmt.Errorf("lint failed: %d findings at or above %s", n, failOn)
	}
	// A rule that could not run leaves its descriptors unchecked.
	if runErr != nil {
		return errors.Join(failed, fmt.Errorf("lint rules failed: %w", runErr))
	}
	return failed
}

// changedDescriptors narrows paths to descriptors git reports as changed. When
// the working directory is not a repository every path is kept.
func changedDescriptors(cmd *cobra.Command, loader *lint.Loader, root string, paths []string) []string {
	delta := &lint.Delta{RootDir: root, TargetBranch: cfg.Lint.TargetBranch, Logger: logger.Named("delta")}
	changed, err := delta.ChangedFiles(cmd.Context())
	if err != nil {
		logger.Warn("delta failed, scanning all descriptors", "error", err)
		return paths
	}
	if changed == nil {
		return paths
	}

	byRel := make(map[string]string, len(paths))
	rels := make([]string, len(paths))
	for i, p := range paths {
		rels[i] = loader.Rel(p)
		byRel[rels[i]] = p
	}
	kept := lint.FilterByDelta(rels, changed, cfg.Toolchain.PropertiesFiles)
	out := make([]string, len(kept))
	for i, rel := range kept {
		out[i] = byRel[rel]
	}
	logger.Debug("delta applied", "changed", len(out), "total", len(paths))
	return out
}
