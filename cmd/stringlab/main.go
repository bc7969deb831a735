// Stringlab is the terminal front end for the string lab API.
//
// It generates random strings through the service, runs the iterative
// or recursive case conversion over them, and shows the measurements.
//
// Usage:
//
//	stringlab [command] [flags]
//
// Running without arguments launches the interactive form.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stringlab/internal/client"
	"github.com/stringlab/internal/config"
	"github.com/stringlab/internal/controller"
	"github.com/stringlab/internal/models"
	"github.com/stringlab/internal/ui"
	"github.com/stringlab/internal/version"
	"github.com/stringlab/pkg/logger"
)

var (
	apiURL     string
	timeout    time.Duration
	count      string
	pattern    string
	algorithm  string
	direction  string
	runsLimit  int
	clientConf *config.ClientConfig
	log        *logger.Logger
)

// errShown marks failures the view has already printed
var errShown = errors.New("request failed")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errShown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stringlab",
	Short: "Generate strings and compare case conversion algorithms",
	Long: `A terminal client for the string lab API.

Generates random lower, upper or mixed case strings, converts them with an
iterative or recursive algorithm and reports time and memory figures.

If no command is specified, the interactive form will launch.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive form",
	RunE:  runTUI,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a string and analyze it once",
	Example: `  # 500 mixed characters, swapped recursively
  stringlab run --count 500 --algorithm recursive --direction swap

  # lower case ASCII through the iterative path
  stringlab run -n 20 -p lower`,
	RunE: runOnce,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Runs(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		ui.NewTextView(cmd.OutOrStdout()).RenderRuns(resp.Runs)
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().Ping(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", status.Status, status.Message, status.Timestamp)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stringlab %s\n", version.Full())
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (default $STRINGLAB_API_URL or http://localhost:5000/api)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (default $STRINGLAB_TIMEOUT_SECONDS or 30s)")

	runCmd.Flags().StringVarP(&count, "count", "n", "100", "number of characters to generate")
	runCmd.Flags().StringVarP(&pattern, "pattern", "p", models.PatternMixed, "character pattern: lower, upper or mixed")
	runCmd.Flags().StringVarP(&algorithm, "algorithm", "a", models.AlgorithmIterative, "conversion algorithm: iterative or recursive")
	runCmd.Flags().StringVarP(&direction, "direction", "d", models.DirectionSwap, "conversion for mixed strings: to_upper, to_lower or swap")

	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to list")

	rootCmd.AddCommand(tuiCmd, runCmd, runsCmd, pingCmd, versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	clientConf = cfg
	log = logger.New(cfg.LogLevel)
	log.Debug("Client configured",
		logger.F("api_url", cfg.APIBaseURL),
		logger.F("timeout", cfg.Timeout.String()))
	return nil
}

func newClient() *client.Client {
	return client.New(clientConf.APIBaseURL, clientConf.Timeout)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return ui.Run(cmd.Context(), newClient())
}

func runOnce(cmd *cobra.Command, args []string) error {
	view := ui.NewTextView(cmd.OutOrStdout())
	ctrl := controller.New(newClient(), view)
	ctrl.SelectPattern(pattern)

	if err := ctrl.Generate(cmd.Context(), count, pattern); err != nil {
		log.Debug("Generate failed", logger.F("error", err.Error()))
		return errShown
	}

	dir := ""
	if ctrl.Session().Pattern == models.PatternMixed {
		dir = direction
	}
	if err := ctrl.Analyze(cmd.Context(), algorithm, dir); err != nil {
		log.Debug("Analyze failed", logger.F("error", err.Error()))
		return errShown
	}
	return nil
}
