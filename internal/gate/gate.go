// Package gate decides whether a download is needed by comparing the
// published version marker against the locally persisted one.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/coreforge/enginesync/internal/domain"
	"github.com/coreforge/enginesync/internal/http"
)

// Gate fetches the remote version marker over plain HTTP and compares it
// against the marker file written after the last successful download. The
// remote marker is read fresh on every check, never cached.
type Gate struct {
	baseURL    string
	fileName   string
	httpClient *http.Client
	fs         afero.Fs
	logger     *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithHTTPClient sets the HTTP client used for remote fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gate) {
		g.httpClient = client
	}
}

// WithFs sets the filesystem used for the local marker.
func WithFs(fs afero.Fs) Option {
	return func(g *Gate) {
		g.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// New creates a Gate reading <versionFileURL>/<versionFile>.
func New(versionFileURL, versionFile string, opts ...Option) *Gate {
	g := &Gate{
		baseURL:  strings.TrimSuffix(versionFileURL, "/"),
		fileName: versionFile,
		fs:       afero.NewOsFs(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.httpClient == nil {
		g.httpClient = http.NewClient(http.WithLogger(g.logger))
	}

	return g
}

// Decision is the outcome of one version check.
type Decision struct {
	Remote int
	Local  int
	// Download is true only when the remote marker is strictly greater
	// than the local one.
	Download bool
}

// Remote fetches and parses the published version marker.
func (g *Gate) Remote(ctx context.Context) (int, error) {
	url := g.baseURL + "/" + g.fileName

	resp, err := g.httpClient.Get(ctx, url)
	if err != nil {
		return 0, &domain.FetchError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &domain.FetchError{URL: url, Status: resp.StatusCode}
	}

	raw := strings.TrimSpace(string(resp.Body))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.VersionFormatError{Source: "remote", Raw: raw}
	}

	return v, nil
}

// Local reads the persisted marker. A missing or empty marker file reads
// as version 0, which makes any published version an update.
func (g *Gate) Local(markerPath string) (int, error) {
	data, err := afero.ReadFile(g.fs, markerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read version marker: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.VersionFormatError{Source: markerPath, Raw: raw}
	}

	return v, nil
}

// Check fetches both markers and decides whether a download is needed.
func (g *Gate) Check(ctx context.Context, markerPath string) (Decision, error) {
	remote, err := g.Remote(ctx)
	if err != nil {
		return Decision{}, err
	}

	local, err := g.Local(markerPath)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Remote:   remote,
		Local:    local,
		Download: remote > local,
	}

	g.logger.Debug("version check",
		"remote", d.Remote,
		"local", d.Local,
		"download", d.Download,
	)

	return d, nil
}

// Persist overwrites the local marker with the given version.
func (g *Gate) Persist(markerPath string, version int) error {
	if err := g.fs.MkdirAll(filepath.Dir(markerPath), 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}

	if err := afero.WriteFile(g.fs, markerPath, []byte(strconv.Itoa(version)), 0644); err != nil {
		return fmt.Errorf("failed to write version marker: %w", err)
	}

	return nil
}
