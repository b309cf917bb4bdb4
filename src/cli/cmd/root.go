package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/sofmeright/droidconf/src/config"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string
	cfg      *config.Config
	logger   hclog.Logger = hclog.NewNullLogger()
)

var rootCmd = &cobra.Command{
	Use:   "droidconf",
	Short: "Android build configuration validator",
	Long: `droidconf validates and lints Android application build descriptors.

Descriptors are build.gradle.kts scripts or droidconf YAML/TOML files. Flutter
toolchain variables are resolved from config, the environment and
local.properties before validation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(os.Stderr)

		// Skip config loading for commands that don't need it.
		switch cmd.Name() {
		case "version", "migrate":
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		warnings, _ := config.Validate(cfg)
		for _, w := range warnings {
			logger.Warn("config", "warning", w)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .droidconf.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (log level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error (default: $DROIDCONF_LOG_LEVEL, then warn)")
}

// newLogger resolves the level from --log-level, --verbose, then the
// environment.
func newLogger(w io.Writer) hclog.Logger {
	level := logLevel
	if level == "" && verbose {
		level = "debug"
	}
	if level == "" {
		level = os.Getenv("DROIDCONF_LOG_LEVEL")
	}
	if level == "" {
		level = "warn"
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "droidconf",
		Level:  hclog.LevelFromString(strings.ToLower(level)),
		Output: w,
		Color:  hclog.AutoColor,
	})
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
