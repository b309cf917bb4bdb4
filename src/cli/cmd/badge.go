package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofmeright/droidconf/src/badge"
	"github.com/sofmeright/droidconf/src/lint"
	"github.com/sofmeright/droidconf/src/output"
)

var (
	badgeOutput string
	badgeLint   bool
)

var badgeCmd = &cobra.Command{
	Use:   "badge [paths...]",
	Short: "Write an SVG status badge",
	Long: `Validate descriptors and write a status badge.

The badge reads "valid" when every descriptor passes, or the number of invalid
descriptors. With --lint, lint findings are counted too.`,
	RunE: runBadge,
}

func init() {
	badgeCmd.Flags().StringVarP(&badgeOutput, "output", "o", "", "badge path (default: badge.output from config)")
	badgeCmd.Flags().BoolVar(&badgeLint, "lint", false, "count lint findings as well")
	rootCmd.AddCommand(badgeCmd)
}

func runBadge(cmd *cobra.Command, args []string) error {
	root, err := scanRoot()
	if err != nil {
		return err
	}
	paths, err := collectDescriptors(root, args)
	if err != nil {
		return err
	}
	loader := newLoader(root)

	errs, err := loader.ValidateAll(cmd.Context(), paths)
	if err != nil {
		return err
	}
	var invalid int
	for _, e := range errs {
		if e != nil {
			invalid++
		}
	}

	var tally output.Tally
	if badgeLint {
		engine, err := lint.NewEngine(cfg.Lint, nil, nil, logger, lint.NewCache(root, cfg.Lint.CacheDir, true))
		if err != nil {
			return err
		}
		targets, err := loader.LoadAll(cmd.Context(), paths)
		if err != nil {
			return err
		}
		findings, err := engine.Run(cmd.Context(), targets)
		if err != nil {
			logger.Warn("some rules failed", "error", err)
		}
		tally = output.Count(findings)
	}

	metrics, err := loadBadgeFont()
	if err != nil {
		return err
	}
	path := badgeOutput
	if path == "" {
		path = cfg.Badge.Output
	}
	b := badge.Status(cfg.Badge.Label, invalid, tally.Critical, tally.Warning)
	if err := badge.New(metrics).Write(path, b); err != nil {
		return err
	}
	fmt.Printf("  badge %s: %s\n", path, b.Value)
	return nil
}

func loadBadgeFont() (*badge.FontMetrics, error) {
	var (
		m   *badge.FontMetrics
		err error
	)
	if cfg.Badge.FontFile != "" {
		m, err = badge.LoadFontFile(cfg.Badge.FontFile, cfg.Badge.FontSize)
	} else {
		m, err = badge.LoadDefaultFont(cfg.Badge.FontSize)
	}
	if err != nil {
		return nil, fmt.Errorf("loading badge font: %w", err)
	}
	return m, nil
}
