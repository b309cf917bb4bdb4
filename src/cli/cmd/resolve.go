package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/toolchain"
)

var resolveFormat string

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Print a descriptor with toolchain variables substituted",
	Long: `Load one descriptor, resolve its Flutter toolchain variables and print
the resulting build configuration together with the variable values used.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveFormat, "output", "o", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(resolveCmd)
}

// resolved is the document printed by resolve.
type resolved struct {
	Path      string                  `yaml:"path" json:"path"`
	Variables map[string]string       `yaml:"variables,omitempty" json:"variables,omitempty"`
	Config    *descriptor.BuildConfig `yaml:"config" json:"config"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	if resolveFormat != "yaml" && resolveFormat != "json" {
		return fmt.Errorf("unknown output format %q (want yaml or json)", resolveFormat)
	}
	root, err := scanRoot()
	if err != nil {
		return err
	}
	loader := newLoader(root)
	t, err := loader.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if t.Err != nil {
		return t.Err
	}
	for _, name := range toolchain.SortedKeys(t.Variables) {
		logger.Debug("variable", "name", name, "value", t.Variables[name])
	}
	return writeResolved(os.Stdout, resolveFormat, resolved{Path: t.Path, Variables: t.Variables, Config: t.Config})
}

func writeResolved(w io.Writer, format string, doc resolved) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
