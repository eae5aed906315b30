// Package main implements the scry CLI, a static purity, effect,
// exception, and termination analyzer for a dynamically-dispatched,
// actor-style functional language compiled to tagged bytecode.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/scry/internal/config"
	"github.com/unbound-force/scry/internal/orchestrator"
	"github.com/unbound-force/scry/internal/registry"
	"github.com/unbound-force/scry/internal/report"
	"github.com/unbound-force/scry/internal/source"
	"github.com/unbound-force/scry/internal/syntax"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "scry",
		Short:   "Scry — whole-program purity, effect, and termination analysis",
		Long:    `Scry loads a project's compiled modules and reports, per function, its compact effect, which exceptions it may raise, and whether it is known to terminate.`,
		Version: version,
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newSchemaCmd())

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analyzeParams holds the parsed flags for the analyze command.
type analyzeParams struct {
	modulePaths []string
	format      string
	configPath  string
	registryFl  string
	permissive  bool
}

// loadConfig loads the Config from the given path, searching the
// current directory for .scry.yaml when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return config.Default(), nil
		}
		path = filepath.Join(cwd, ".scry.yaml")
	}
	return config.Load(path)
}

// runAnalyze is the extracted, testable body of the analyze command.
func runAnalyze(p analyzeParams, stdout io.Writer) error {
	if p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}
	if len(p.modulePaths) == 0 {
		return fmt.Errorf("at least one module path is required")
	}

	cfg, err := loadConfig(p.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	regPath := cfg.RegistryPath
	if p.registryFl != "" {
		regPath = p.registryFl
	}
	reg, err := registry.Load(regPath)
	if err != nil {
		return fmt.Errorf("loading registry %q: %w", regPath, err)
	}

	var src source.JSONFile
	modules := make([]syntax.Module, 0, len(p.modulePaths))
	for _, mp := range p.modulePaths {
		logger.Info("loading module", "path", mp)
		mod, err := src.Load(mp)
		if err != nil {
			return fmt.Errorf("loading module %q: %w", mp, err)
		}
		modules = append(modules, mod)
	}

	opts := orchestrator.Options{
		MaxIterations: cfg.MaxIterations,
		Permissive:    p.permissive || cfg.Permissive,
	}

	logger.Info("analyzing project", "modules", len(modules))
	pr := orchestrator.AnalyzeProject(modules, reg, opts)
	logger.Info("analysis complete", "modules", len(pr.Modules))

	switch p.format {
	case "json":
		return report.WriteJSON(stdout, pr)
	default:
		return report.WriteText(stdout, pr)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		format     string
		configPath string
		registryFl string
		permissive bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [module-file...]",
		Short: "Analyze one or more compiled modules",
		Long: `Analyze a set of module artifacts (JSON-encoded trees per §6.1)
and report, per function, its compact effect tag, its known
exceptions, and whether it is known to terminate.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runAnalyze(analyzeParams{
				modulePaths: args,
				format:      format,
				configPath:  configPath,
				registryFl:  registryFl,
				permissive:  permissive,
			}, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to .scry.yaml config file (default: search CWD)")
	cmd.Flags().StringVar(&registryFl, "registry", "",
		"path to the stdlib registry YAML description (default: from config)")
	cmd.Flags().BoolVar(&permissive, "permissive", false,
		"treat unresolved application modules as Unknown without reporting project errors")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for scry analysis output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of scry analyze --format=json output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}
