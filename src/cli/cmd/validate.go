package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/droidconf/src/output"
)

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Validate build descriptors",
	Long: `Validate SDK bounds, the application id, resource shrinking and proguard
file references of every descriptor.

Each descriptor reports its first violation. The command fails when any
descriptor is invalid or cannot be loaded.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	root, err := scanRoot()
	if err != nil {
		return err
	}
	paths, err := collectDescriptors(root, args)
	if err != nil {
		return err
	}

	loader := newLoader(root)
	start := time.Now()
	errs, err := loader.ValidateAll(cmd.Context(), paths)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	rels := make([]string, len(paths))
	for i, p := range paths {
		rels[i] = loader.Rel(p)
	}

	w := cmd.OutOrStdout()
	color := output.UseColor()
	output.ContextBlock(w, output.CIContext())

	var invalid int
	output.SectionStart(w, "dc_validate", "Validate")
	sec := output.NewSection(w, "Validate", elapsed, color)
	for i, rel := range rels {
		if errs[i] != nil {
			invalid++
			logger.Debug("descriptor invalid", "path", rel, "error", errs[i])
		}
		output.ValidationRow(sec, rel, errs[i], color)
	}
	sec.Separator()
	sec.Row("%s", output.ValidationSummaryLine(len(rels)-invalid, invalid, color))
	sec.Close()
	output.SectionEnd(w, "dc_validate")

	if output.IsCI() {
		report := output.BuildValidateJUnit(rels, errs, elapsed)
		if err := output.WriteJUnit(cfg.Report.JUnitDir, "validate.xml", report); err != nil {
			logger.Warn("junit report not written", "error", err)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("validation failed: %d of %d descriptors invalid", invalid, len(rels))
	}
	return nil
}
