package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/VectorBits/Solview/src/internal/annotation"
	"github.com/VectorBits/Solview/src/internal/config"
	"github.com/VectorBits/Solview/src/internal/logger"
	"github.com/VectorBits/Solview/src/internal/report"
	"github.com/VectorBits/Solview/src/internal/ui"
)

// CLIConfig holds the flags shared by every command. Zero values leave the
// settings file in charge.
type CLIConfig struct {
	ConfigFile  string
	OutputDir   string
	Contracts   []string
	Network     string
	Solc        string
	Annotations string
	Concurrency int
	Timeout     time.Duration
	Stdout      bool
	Verbose     bool
}

func (c *CLIConfig) Validate() error {
	if c.Concurrency < 0 {
		return errors.New("--concurrency must not be negative")
	}
	if c.Timeout < 0 {
		return errors.New("--timeout must not be negative")
	}
	if c.Annotations != "" {
		if _, err := annotation.New(c.Annotations); err != nil {
			return err
		}
	}
	for i, name := range c.Contracts {
		c.Contracts[i] = strings.TrimSpace(name)
		if c.Contracts[i] == "" {
			return errors.New("--contract must not be empty")
		}
	}
	return nil
}

// MergeConfigs applies the command line over the loaded settings.
func (c *CLIConfig) MergeConfigs(appConfig *config.AppConfig) *config.AppConfig {
	cfg := config.Default()
	if appConfig != nil {
		merged := *appConfig
		cfg = &merged
	}
	if c.OutputDir != "" {
		cfg.Output.Dir = c.OutputDir
	}
	if c.Network != "" {
		cfg.Loader.NetworkID = c.Network
	}
	if c.Solc != "" {
		cfg.Solc.Binary = c.Solc
	}
	if c.Annotations != "" {
		cfg.Annotations.Source = c.Annotations
	}
	if c.Concurrency > 0 {
		cfg.Loader.Concurrency = c.Concurrency
	}
	if c.Timeout > 0 {
		cfg.Solc.Timeout = c.Timeout
	}
	if c.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg
}

// BuildRoot returns the solview command tree. The settings are resolved and
// the logger initialized before any subcommand runs.
func BuildRoot() *cobra.Command {
	cli := &CLIConfig{}
	var app *config.AppConfig

	root := &cobra.Command{
		Use:           "solview",
		Short:         "Build a semantic model of Solidity contracts and derive ABIs and docs from it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.Validate(); err != nil {
				return err
			}
			loaded, err := loadSettings(cli.ConfigFile)
			if err != nil {
				return err
			}
			app = cli.MergeConfigs(loaded)
			if err := app.Validate(); err != nil {
				return err
			}
			return logger.InitLogger(logger.Options{
				Level:      app.Log.Level,
				File:       app.Log.File,
				MaxSizeMB:  app.Log.MaxSizeMB,
				MaxBackups: app.Log.MaxBackups,
				Console:    app.Log.Console,
			})
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&cli.ConfigFile, "config", "", "Settings file (default: config/settings.yaml when present)")
	f.StringVarP(&cli.OutputDir, "out", "o", "", "Output directory")
	f.StringSliceVarP(&cli.Contracts, "contract", "c", nil, "Restrict output to these contracts (repeatable)")
	f.StringVar(&cli.Network, "network", "", "Network id used to pick deployed addresses from artifacts")
	f.StringVar(&cli.Solc, "solc", "", "solc binary used for every source")
	f.StringVar(&cli.Annotations, "annotations", "", "Annotation source: scan|ast")
	f.IntVar(&cli.Concurrency, "concurrency", 0, "Parallel parse workers")
	f.DurationVar(&cli.Timeout, "timeout", 0, "Timeout of one solc run")
	f.BoolVar(&cli.Stdout, "stdout", false, "Print to stdout instead of writing files")
	f.BoolVarP(&cli.Verbose, "verbose", "v", false, "Debug logging")

	settings := func() *config.AppConfig { return app }
	root.AddCommand(
		newReportCmd("model", "Write the normalized contract model as JSON", report.KindModel, cli, settings),
		newReportCmd("abi", "Write the JSON ABI of each contract", report.KindABI, cli, settings),
		newReportCmd("docs", "Write markdown interface docs for each contract", report.KindDocs, cli, settings),
		newCompareCmd(settings),
	)
	return root
}

func loadSettings(path string) (*config.AppConfig, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadConfig()
}

func newReportCmd(use, short, kind string, cli *CLIConfig, settings func() *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ExecuteReport(cmd.Context(), settings(), cli, kind, args, cmd.OutOrStdout())
		},
	}
}

func newCompareCmd(settings func() *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <left> <right>",
		Short: "List functions of two source sets that share a selector",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ExecuteCompare(cmd.Context(), settings(), args[0], args[1], cmd.OutOrStdout())
		},
	}
}

// Print writes the banner to stderr so that --stdout output stays clean.
func Print() {
	ui.PrintBanner(os.Stderr)
}

func Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()

	go func() {
		count := 0
		for range sigChan {
			count++
			if count == 1 {
				fmt.Fprintln(os.Stderr, "\nInterrupt received, stopping... (press Ctrl+C again to force exit)")
				cancel()
				continue
			}
			fmt.Fprintln(os.Stderr, "\nForce exiting...")
			os.Exit(130)
		}
	}()

	defer logger.Close()
	return BuildRoot().ExecuteContext(ctx)
}

func PrintFatal(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
