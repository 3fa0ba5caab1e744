// Package cmd contains all CLI commands for gentrap-report.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/biopet/gentrap-report/internal/config"
	"github.com/biopet/gentrap-report/internal/gentrap"
	"github.com/biopet/gentrap-report/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is the current version of gentrap-report
	Version = "0.1.0"

	// Global flags
	verbose       bool
	configPath    string
	forAgents     bool
	outputFormat  string
	outputDensity string

	// Set by PersistentPreRunE; commands go through loadConfig and getLogger
	// so they also work when invoked directly from tests.
	appConfig *config.Config
	logger    *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gentrap-report",
	Short: "Build and render reports for Gentrap pipeline runs",
	Long: `gentrap-report turns a Gentrap pipeline summary and the FastQC reports it
references into one run -> sample -> library model, and renders that model
through a LaTeX-friendly template.

The summary is a JSON document written by the pipeline. FastQC files are
resolved from the paths registered in it and parsed module by module. RNA
metrics ratios are derived per sample and per library.

Output Format:
  Commands that print the model use YAML by default.
  Use --format to switch to JSON.
  Use --density to control detail level (sparse|medium|dense).

Main capabilities:
  - Render a report from a template
  - Dump the assembled model
  - Inspect a single FastQC report
  - Cache run metrics and QC statuses in SQLite
  - Serve the model to agents over MCP

Examples:
  gentrap-report render summary.json report.tex logo.pdf -o out.tex
  gentrap-report model summary.json --density dense
  gentrap-report fastqc sample_1/fastqc_data.txt
  gentrap-report cache summary.json
  gentrap-report serve --mcp summary.json

See 'gentrap-report <command> --help' for command-specific options.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		cfg.OutputPaths = []string{"stderr"}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		appConfig, err = readConfig()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .gentrap/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format (yaml|json), overrides output.format")
	rootCmd.PersistentFlags().StringVar(&outputDensity, "density", "", "Output density (sparse|medium|dense), overrides output.density")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

func readConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load(".")
}

// loadConfig returns the configuration loaded by the root command, loading it
// on first use otherwise.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}

func getLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// buildOptions maps the build section of cfg onto gentrap.Options.
func buildOptions(cfg *config.Config) (gentrap.Options, error) {
	policy, err := gentrap.ParseZeroDivisionPolicy(cfg.Build.ZeroDivision)
	if err != nil {
		return gentrap.Options{}, err
	}
	return gentrap.Options{
		Workers:      cfg.Build.Workers,
		ZeroDivision: policy,
		Logger:       getLogger(),
	}, nil
}

// loadRun reads the summary at path with the configured build options.
func loadRun(path string) (*gentrap.Run, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}
	run, err := gentrap.Load(path, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return run, nil
}

// resolveOutput returns the output format and density, flags taking
// precedence over the config file.
func resolveOutput(cfg *config.Config) (output.Format, output.Density, error) {
	f := cfg.Output.Format
	if outputFormat != "" {
		f = outputFormat
	}
	format, err := output.ParseFormat(f)
	if err != nil {
		return "", "", err
	}

	d := cfg.Output.Density
	if outputDensity != "" {
		d = outputDensity
	}
	density, err := output.ParseDensity(d)
	if err != nil {
		return "", "", err
	}
	return format, density, nil
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp outputs machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	out := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(out)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
