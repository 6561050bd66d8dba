package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"LaunchDigest/internal/app"
	"LaunchDigest/internal/config"
	"LaunchDigest/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath      string
	sourceURL       string
	maxServices     int
	maxScreenshots  int
	skipScreenshots bool
	outputDir       string
	concurrency     int
	verbose         bool
}

var rootCmd = &cobra.Command{
	Use:   "launchdigest",
	Short: "Turn a cloud launch announcement page into a researched slide deck",
	Long: "LaunchDigest discovers service announcements on a source page, researches each\n" +
		"service's documentation and pricing, captures screenshots and assembles a\n" +
		"Markdown presentation plus a run report.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDigest,
}

func init() {
	defaults := config.Default()

	f := rootCmd.Flags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to a YAML config file (default $LAUNCHDIGEST_CONFIG)")
	f.StringVar(&rootFlags.sourceURL, "source-url", defaults.Run.SourceURL, "Announcement page or feed to scan")
	f.IntVar(&rootFlags.maxServices, "max-services", defaults.Run.MaxServices, "Maximum services to process (0 = all)")
	f.IntVar(&rootFlags.maxScreenshots, "max-screenshots", defaults.Run.MaxScreenshots, "Maximum services to capture (-1 = all)")
	f.BoolVar(&rootFlags.skipScreenshots, "skip-screenshots", false, "Do not capture screenshots")
	f.StringVar(&rootFlags.outputDir, "output-dir", defaults.Run.OutputDir, "Directory for all run outputs")
	f.IntVar(&rootFlags.concurrency, "concurrency", defaults.Run.Concurrency, "Services processed in parallel")
	f.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Version = version
}

func runDigest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	cfg.Apply(overridesFrom(cmd))
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	summary, err := application.Run(ctx)
	if err != nil {
		logger.Error("run aborted", "error", err)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(cfg.Run.Title, summary))
	return nil
}

// overridesFrom copies only the flags the user actually set.
func overridesFrom(cmd *cobra.Command) config.Overrides {
	f := cmd.Flags()
	o := config.Overrides{Verbose: rootFlags.verbose}
	if f.Changed("source-url") {
		o.SourceURL = &rootFlags.sourceURL
	}
	if f.Changed("max-services") {
		o.MaxServices = &rootFlags.maxServices
	}
	if f.Changed("max-screenshots") {
		o.MaxScreenshots = &rootFlags.maxScreenshots
	}
	if f.Changed("skip-screenshots") {
		o.SkipScreenshots = &rootFlags.skipScreenshots
	}
	if f.Changed("output-dir") {
		o.OutputDir = &rootFlags.outputDir
	}
	if f.Changed("concurrency") {
		o.Concurrency = &rootFlags.concurrency
	}
	return o
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
