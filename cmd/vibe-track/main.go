// Package main provides the vibe-track command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".vibe-track"

func main() {
	os.Exit(run(os.Args[1:]))
}

// globals holds state shared by every subcommand.
type globals struct {
	verbose    bool
	configFile string
	logger     *zap.Logger
}

func run(args []string) int {
	g := &globals{logger: zap.NewNop()}
	root := newRootCmd(g)
	root.SetArgs(args)

	err := root.Execute()
	g.logger.Sync() //nolint:errcheck
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var he *hintError
	if errors.As(err, &he) {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", he.hint)
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibe-track",
		Short: "Variant track layout",
		Long: `vibe-track lays out ClinVar variant tracks over gene and transcript
regions: frameshift termination sites, packed rows, marker shapes and
haplotype groups. Tracks are written as tab-delimited text, JSON or SVG.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(g.configFile); err != nil {
				return err
			}
			logger, err := newLogger(g.verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			g.logger = logger
			return nil
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("vibe-track version %s (%s) built %s\n", version, commit, date))
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err, cmd: c}
	})

	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Config file (default: ~/.vibe-track.yaml)")

	cmd.AddCommand(newLayoutCmd(g))
	cmd.AddCommand(newTerminusCmd(g))
	cmd.AddCommand(newImportCmd(g))
	cmd.AddCommand(newDownloadCmd(g))
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads the config file and VIBE_TRACK_ environment overrides.
// A missing default config file is not an error.
func initConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIBE_TRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// defaultConfigFile returns ~/.vibe-track.yaml.
func defaultConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// newLogger builds a development logger at debug level when verbose,
// otherwise a production logger that only reports warnings and errors.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// usageError marks errors caused by invalid command-line usage.
type usageError struct {
	err error
	cmd *cobra.Command
}

func (e *usageError) Error() string {
	return fmt.Sprintf("%v (see %s --help)", e.err, e.cmd.CommandPath())
}

func (e *usageError) Unwrap() error {
	return e.err
}

// hintError carries a suggestion printed after the error message.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string {
	return e.err.Error()
}

func (e *hintError) Unwrap() error {
	return e.err
}

func withHint(err error, format string, args ...any) error {
	return &hintError{err: err, hint: fmt.Sprintf(format, args...)}
}

func usagef(cmd *cobra.Command, format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...), cmd: cmd}
}
