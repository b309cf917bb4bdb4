package cmd

import (
	"fmt"
	"os"

	"github.com/sofmeright/droidconf/src/lint"
)

// scanRoot is the directory descriptor paths, globs and caches are relative to.
func scanRoot() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return root, nil
}

// collectDescriptors expands command arguments, or the configured descriptor
// globs, or discovery under root, into descriptor paths.
func collectDescriptors(root string, args []string) ([]string, error) {
	paths, err := lint.Expand(root, args, cfg.Descriptors, cfg.Lint.Exclude)
	if err != nil {
		return nil, fmt.Errorf("collecting descriptors: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no descriptors found under %s", root)
	}
	logger.Debug("descriptors collected", "count", len(paths))
	return paths, nil
}

func newLoader(root string) *lint.Loader {
	return &lint.Loader{
		RootDir:   root,
		Toolchain: cfg.Toolchain,
		Logger:    logger.Named("load"),
	}
}
