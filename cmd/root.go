package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/starcalypse/torrentdeck/config"
	"github.com/starcalypse/torrentdeck/downloader"
	"github.com/starcalypse/torrentdeck/relocator"
	"github.com/starcalypse/torrentdeck/report"
)

var (
	cfgFile    string
	cfg        *config.AppConfig
	store      *config.Store
	logger     zerolog.Logger
	operations *relocator.Operations

	// Command flags
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "torrentdeck",
	Short: "Bulk rewrite tracker URLs in qBittorrent and Transmission",
	Long: `torrentdeck connects to a qBittorrent or Transmission daemon, finds every
tracker URL matching your domain rules and rewrites it in place.

Use "scan" to preview the changes and "execute" to apply them.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/TorrentDeck/config.json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", string(report.FormatConsole), "output format: console, markdown or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initializeApp loads the configuration and builds the logger and operations
func initializeApp(cmd *cobra.Command, args []string) error {
	if _, err := report.ParseFormat(outputFormat); err != nil {
		return err
	}

	// The store logs load warnings, so start from the default logging setup
	logger = setupLogger(config.Default().Logging, cmd.ErrOrStderr())
	cfg = config.NewStore(cfgFile, logger).Load()

	// --verbose only touches the logger, cfg may be shown or saved later
	logging := cfg.Logging
	if verbose {
		logging.Level = "debug"
	}
	logger = setupLogger(logging, cmd.ErrOrStderr())
	store = config.NewStore(cfgFile, logger)

	dialer := relocator.DefaultDialer(cfg.Client.Options(userAgent())...)
	operations = relocator.NewOperations(logger, relocator.WithDialer(dialer))
	return nil
}

// userAgent identifies this build to the downloader
func userAgent() string {
	return downloader.DefaultUserAgent + "/" + appVersion
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(out),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newReportWriter returns the renderer selected by --output
func newReportWriter(cmd *cobra.Command) (report.Writer, error) {
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return report.NewWriter(format, cmd.OutOrStdout())
}
