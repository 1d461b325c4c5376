// Package app provides the core application logic.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/afero"

	"github.com/coreforge/enginesync/internal/config"
	"github.com/coreforge/enginesync/internal/domain"
	"github.com/coreforge/enginesync/internal/gate"
	"github.com/coreforge/enginesync/internal/proc"
	"github.com/coreforge/enginesync/internal/ui"
	"github.com/coreforge/enginesync/pkg/version"
)

// Run commands understood by the orchestrator. Anything else logs a
// message and falls through to normal completion.
const (
	CommandUpload   = "upload"
	CommandDownload = "download"
)

// Orchestrator drives one sync run: resolve the engine path, dispatch to
// the upload or download flow, stream every subprocess line to the
// reporter, and apply the post-download side effects.
type Orchestrator struct {
	adapter       domain.Adapter
	gate          *gate.Gate
	runner        domain.CommandRunner
	reporter      domain.Reporter
	registrar     domain.Registrar
	bootstrap     domain.Bootstrap
	metricsPusher domain.MetricsPusher
	notifier      domain.Notifier
	config        *config.Config
	fs            afero.Fs
	logger        *slog.Logger
	hostname      string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAdapter sets the backend adapter. A nil adapter means the
// configured backend was unrecognized; flows then no-op instead of
// failing the run.
func WithAdapter(a domain.Adapter) Option {
	return func(o *Orchestrator) {
		o.adapter = a
	}
}

// WithGate sets the version gate.
func WithGate(g *gate.Gate) Option {
	return func(o *Orchestrator) {
		o.gate = g
	}
}

// WithRunner sets the command runner.
func WithRunner(r domain.CommandRunner) Option {
	return func(o *Orchestrator) {
		o.runner = r
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r domain.Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// WithRegistrar sets the engine registrar.
func WithRegistrar(r domain.Registrar) Option {
	return func(o *Orchestrator) {
		o.registrar = r
	}
}

// WithBootstrap sets the platform bootstrap.
func WithBootstrap(b domain.Bootstrap) Option {
	return func(o *Orchestrator) {
		o.bootstrap = b
	}
}

// WithMetricsPusher sets the metrics pusher.
func WithMetricsPusher(m domain.MetricsPusher) Option {
	return func(o *Orchestrator) {
		o.metricsPusher = m
	}
}

// WithNotifier sets the notifier.
func WithNotifier(n domain.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithFs sets the filesystem used to create the engine directory,
// primarily for tests.
func WithFs(fs afero.Fs) Option {
	return func(o *Orchestrator) {
		o.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg *config.Config, opts ...Option) *Orchestrator {
	hostname, _ := os.Hostname()

	o := &Orchestrator{
		config:   cfg,
		runner:   proc.NewRunner(),
		reporter: ui.NewConsole(),
		fs:       afero.NewOsFs(),
		logger:   slog.Default(),
		hostname: hostname,
		notifier: &domain.NopNotifier{}, // Default to no-op
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run executes a single sync run for the given command and engine path.
// The returned RunResult is populated even when the run fails.
func (o *Orchestrator) Run(ctx context.Context, command, enginePath string) (*domain.RunResult, error) {
	result := domain.NewRunResult(o.backendName(), commandDirection(command))

	o.logger.Info("starting sync run",
		"command", command,
		"backend", o.backendName().String(),
		"path", enginePath,
	)

	runErr := o.run(ctx, command, enginePath, result)
	result.Complete(runErr)

	// Metrics and notifications report on the run; they never fail it.
	o.pushMetrics(ctx, result)
	o.sendNotification(ctx, result)

	o.logger.Info("sync run completed",
		"success", result.Success,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)

	return result, runErr
}

func (o *Orchestrator) run(ctx context.Context, command, enginePath string, result *domain.RunResult) error {
	path, err := o.resolvePath(enginePath)
	if err != nil {
		return err
	}

	switch command {
	case CommandUpload:
		return o.uploadFlow(ctx, path, result)
	case CommandDownload:
		return o.downloadFlow(ctx, path, result)
	default:
		// Same non-fatal convention as an unrecognized backend.
		o.logger.Warn("unrecognized command, nothing to do", "command", command)
		return nil
	}
}

// resolvePath normalizes the engine path and ensures the directory
// exists. Creation happens before backend dispatch, so an unrecognized
// backend still leaves the directory in place.
func (o *Orchestrator) resolvePath(enginePath string) (string, error) {
	path := config.NormalizeEnginePath(enginePath)

	if err := o.fs.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create engine directory %s: %w", path, err)
	}

	o.logger.Debug("engine path resolved", "path", path)
	return path, nil
}

// uploadFlow mirrors the local tree into the bucket and then publishes
// the local version marker. There is no version gate on upload.
func (o *Orchestrator) uploadFlow(ctx context.Context, enginePath string, result *domain.RunResult) error {
	if o.adapter == nil {
		o.logger.Warn("no backend selected, skipping upload")
		return nil
	}

	if err := o.adapter.EnsureAvailable(ctx, o.reporter); err != nil {
		return err
	}

	if err := o.mirror(ctx, domain.DirectionUpload, enginePath, result); err != nil {
		return err
	}

	markerPath := o.config.MarkerPath(enginePath)

	transfer := domain.NewTransferResult(domain.OperationVersionCopy)
	err := o.runner.Stream(ctx, o.adapter.VersionCopyCommand(markerPath), o.reporter)
	transfer.Complete(err)
	result.AddTransfer(transfer)
	if err != nil {
		return fmt.Errorf("version marker upload failed: %w", err)
	}

	o.logger.Info("upload completed", "bucket", o.config.BucketName)
	return nil
}

// downloadFlow checks the version gate and, when the remote marker is
// newer, mirrors the bucket into the local tree. After a successful
// mirror it persists the new marker, registers the engine path, and
// runs the engine's prerequisite installer, in that order.
func (o *Orchestrator) downloadFlow(ctx context.Context, enginePath string, result *domain.RunResult) error {
	if o.adapter == nil {
		o.logger.Warn("no backend selected, skipping download")
		return nil
	}

	markerPath := o.config.MarkerPath(enginePath)

	decision, err := o.gate.Check(ctx, markerPath)
	if err != nil {
		return err
	}
	result.LocalVersion = decision.Local
	result.RemoteVersion = decision.Remote

	if !decision.Download {
		result.Skipped = true
		o.reporter.Line(fmt.Sprintf("Version is already the latest (%d)", decision.Remote))
		return nil
	}

	o.reporter.Line(fmt.Sprintf("Updating engine from version %d to %d", decision.Local, decision.Remote))

	if err := o.adapter.EnsureAvailable(ctx, o.reporter); err != nil {
		return err
	}

	if err := o.mirror(ctx, domain.DirectionDownload, enginePath, result); err != nil {
		return err
	}

	if err := o.gate.Persist(markerPath, decision.Remote); err != nil {
		return fmt.Errorf("failed to persist version marker: %w", err)
	}

	if err := o.registerEngine(enginePath); err != nil {
		return err
	}

	if err := o.runPrerequisites(ctx, enginePath, result); err != nil {
		return err
	}

	o.logger.Info("download completed", "version", decision.Remote)
	return nil
}

// mirror runs the backend's one-way sync for the direction, streaming
// every output line to the reporter as it arrives.
func (o *Orchestrator) mirror(ctx context.Context, direction domain.Direction, enginePath string, result *domain.RunResult) error {
	spec := o.adapter.SyncCommand(direction, enginePath)

	o.logger.Info("running mirror", "direction", direction.String(), "command", spec.String())

	transfer := domain.NewTransferResult(domain.OperationMirror)
	err := o.runner.Stream(ctx, spec, o.reporter)
	transfer.Complete(err)
	result.AddTransfer(transfer)

	if err != nil {
		return fmt.Errorf("%s mirror failed: %w", direction, err)
	}
	return nil
}

func (o *Orchestrator) registerEngine(enginePath string) error {
	if o.registrar == nil {
		return nil
	}
	if o.config.RegistryKey == "" {
		o.logger.Warn("registry_key not configured, skipping engine registration")
		return nil
	}

	if err := o.registrar.RegisterEngine(o.config.RegistryKey, enginePath); err != nil {
		return fmt.Errorf("failed to register engine: %w", err)
	}
	return nil
}

func (o *Orchestrator) runPrerequisites(ctx context.Context, enginePath string, result *domain.RunResult) error {
	if o.bootstrap == nil {
		return nil
	}

	transfer := domain.NewTransferResult(domain.OperationPrerequisites)
	err := o.bootstrap.RunPrerequisites(ctx, enginePath, o.reporter)
	transfer.Complete(err)
	result.AddTransfer(transfer)

	if err != nil {
		return fmt.Errorf("prerequisite installer failed: %w", err)
	}
	return nil
}

// pushMetrics sends run metrics to the metrics pusher.
func (o *Orchestrator) pushMetrics(ctx context.Context, result *domain.RunResult) {
	if o.metricsPusher == nil {
		return
	}

	metrics := domain.NewMetrics(o.hostname)
	metrics.Version = version.Get().Version
	metrics.GoVersion = runtime.Version()
	metrics.Run = result

	if err := o.metricsPusher.Push(ctx, metrics); err != nil {
		o.logger.Error("failed to push metrics", "error", err)
	}
}

// sendNotification sends a notification based on the result and config.
func (o *Orchestrator) sendNotification(ctx context.Context, result *domain.RunResult) {
	if o.notifier == nil {
		return
	}

	level := o.config.Apprise.Notify

	var notification *domain.Notification
	switch {
	case !result.Success:
		if level == config.NotifyError || level == config.NotifyAlways {
			notification = domain.ErrorNotification("Engine sync failed", o.buildErrorMessage(result))
		}

	case level == config.NotifyAlways && !result.Skipped:
		notification = domain.InfoNotification(o.buildSuccessTitle(result), o.buildSuccessMessage(result))
	}

	if notification == nil {
		return
	}

	if err := o.notifier.Notify(ctx, notification); err != nil {
		o.logger.Error("failed to send notification", "error", err)
	}
}

func (o *Orchestrator) buildErrorMessage(result *domain.RunResult) string {
	msg := fmt.Sprintf("Engine sync failed on %s.\n", o.hostname)

	for _, t := range result.Transfers {
		if !t.Success {
			msg += fmt.Sprintf("%s error: %s\n", t.Operation, t.Error)
		}
	}
	if result.Error != "" {
		msg += fmt.Sprintf("Error: %s\n", result.Error)
	}

	return msg
}

func (o *Orchestrator) buildSuccessTitle(result *domain.RunResult) string {
	if result.Direction == domain.DirectionDownload {
		return fmt.Sprintf("Engine updated to version %d", result.RemoteVersion)
	}
	return "Engine upload completed"
}

func (o *Orchestrator) buildSuccessMessage(result *domain.RunResult) string {
	msg := fmt.Sprintf("Engine sync completed successfully on %s.\n", o.hostname)

	if result.Direction == domain.DirectionDownload {
		msg += fmt.Sprintf("Version: %d -> %d\n", result.LocalVersion, result.RemoteVersion)
	}

	msg += fmt.Sprintf("Duration: %s", result.Duration.Round(100000000)) // Round to 0.1s

	return msg
}

func (o *Orchestrator) backendName() domain.Backend {
	if o.adapter == nil {
		return ""
	}
	return o.adapter.Name()
}

func commandDirection(command string) domain.Direction {
	switch command {
	case CommandUpload:
		return domain.DirectionUpload
	case CommandDownload:
		return domain.DirectionDownload
	default:
		return ""
	}
}
