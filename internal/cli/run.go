package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreforge/enginesync/internal/adapter"
	"github.com/coreforge/enginesync/internal/app"
	"github.com/coreforge/enginesync/internal/config"
	"github.com/coreforge/enginesync/internal/domain"
	"github.com/coreforge/enginesync/internal/gate"
	"github.com/coreforge/enginesync/internal/http"
	"github.com/coreforge/enginesync/internal/metrics"
	"github.com/coreforge/enginesync/internal/notify"
	"github.com/coreforge/enginesync/internal/platform"
	"github.com/coreforge/enginesync/internal/proc"
	"github.com/coreforge/enginesync/internal/ui"
)

var (
	runBackend  string
	runPath     string
	runWindowed bool
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [upload|download]",
		Short: "Run a single sync pass and exit",
		Long: `Run a single sync pass and exit.

download (the default) checks the published version marker first and
transfers only when the remote version is newer than the local tree.
upload mirrors the local tree into the bucket and publishes the marker.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRun,
	}

	cmd.Flags().StringVar(&runBackend, "backend", "", "backend CLI to use (aws, rclone); defaults to default_client from config")
	cmd.Flags().StringVar(&runPath, "path", "", "engine tree path; defaults to three directories above the executable")
	cmd.Flags().BoolVar(&runWindowed, "windowed", true, "show a live status window during the transfer")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	command := app.CommandDownload
	if len(args) > 0 {
		command = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("backend") {
		cfg.DefaultClient = runBackend
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	enginePath := runPath
	if enginePath == "" {
		enginePath, err = config.DefaultEnginePath()
		if err != nil {
			return fmt.Errorf("failed to resolve engine path: %w", err)
		}
	}

	runner := proc.NewRunner(proc.WithLogger(logger))
	bootstrap := platform.NewBootstrap(runner, platform.WithLogger(logger))
	registrar := platform.NewRegistrar(platform.WithLogger(logger))

	// Resolve the backend. An unrecognized client name is logged and the
	// adapter stays nil; the flows then no-op instead of failing the run.
	var backendAdapter domain.Adapter
	backend, err := domain.ParseBackend(cfg.DefaultClient)
	if err != nil {
		logger.Warn("unrecognized backend, transfers will be skipped", "client", cfg.DefaultClient)
	} else {
		backendAdapter, err = adapter.New(backend, cfg,
			adapter.WithBootstrap(bootstrap),
			adapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}
	}

	// Console output is always on; the status window layers on top.
	console := ui.NewConsole()
	reporter := domain.Reporter(console)

	var window *ui.Window
	if runWindowed {
		window, err = ui.OpenWindow("enginesync")
		if err != nil {
			logger.Warn("status window unavailable, continuing on console", "error", err)
			window = nil
		} else {
			reporter = ui.NewMulti(console, window)
		}
	}

	closeWindow := func() {
		if window == nil {
			return
		}
		if err := window.Close(); err != nil {
			logger.Debug("closing status window", "error", err)
		}
		window = nil
	}
	defer closeWindow()

	if window != nil {
		// The operator closing the window is an abrupt termination, not
		// a graceful cancellation.
		go func() {
			<-window.Interrupted()
			logger.Warn("status window closed by operator, terminating")
			os.Exit(1)
		}()
	}

	httpClient := http.NewClient(http.WithLogger(logger))

	orchOpts := []app.Option{
		app.WithAdapter(backendAdapter),
		app.WithGate(gate.New(cfg.VersionFileURL, cfg.VersionFile,
			gate.WithHTTPClient(httpClient),
			gate.WithLogger(logger),
		)),
		app.WithRunner(runner),
		app.WithReporter(reporter),
		app.WithRegistrar(registrar),
		app.WithBootstrap(bootstrap),
		app.WithLogger(logger),
	}

	if cfg.Metrics.Enabled {
		orchOpts = append(orchOpts, app.WithMetricsPusher(metrics.NewPushgatewayClient(
			cfg.Metrics.PushgatewayURL,
			metrics.WithHTTPClient(httpClient),
			metrics.WithLogger(logger),
		)))
	}

	if cfg.Apprise.Enabled {
		orchOpts = append(orchOpts, app.WithNotifier(notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(httpClient),
			notify.WithLogger(logger),
		)))
	}

	orchestrator := app.NewOrchestrator(cfg, orchOpts...)

	result, err := orchestrator.Run(cmd.Context(), command, enginePath)
	if err != nil {
		// Tear the window down first so the error lands on a readable
		// terminal, then hold it there until the operator has seen it.
		closeWindow()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if runWindowed {
			fmt.Fprint(os.Stderr, "Press Enter to exit.")
			_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		}
		os.Exit(1)
	}

	logger.Info("sync completed",
		"success", result.Success,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)

	return nil
}
