package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreforge/enginesync/internal/adapter"
	"github.com/coreforge/enginesync/internal/config"
	"github.com/coreforge/enginesync/internal/domain"
	"github.com/coreforge/enginesync/internal/http"
	"github.com/coreforge/enginesync/internal/metrics"
	"github.com/coreforge/enginesync/internal/notify"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and test connectivity",
		Long: `Validate the configuration file and test connectivity to external services.

This checks:
- Config file syntax
- Backend CLI availability and version
- Version marker URL reachability
- Pushgateway connectivity (if enabled)
- Apprise server connectivity (if enabled)`,
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	// Load config
	fmt.Println("Configuration:")
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  ✗ Config file: %v\n", err)
		return err
	}
	fmt.Printf("  ✓ Config file syntax valid\n")

	// Display config values
	fmt.Printf("  Backend: %s\n", cfg.DefaultClient)
	fmt.Printf("  Bucket: %s\n", cfg.BucketName)
	if cfg.VersionBucketName != "" {
		fmt.Printf("  Version bucket: %s\n", cfg.VersionBucketName)
	}
	fmt.Printf("  Version file: %s\n", cfg.VersionFile)
	fmt.Printf("  Version URL: %s\n", cfg.VersionFileURL)
	if cfg.RegistryKey != "" {
		fmt.Printf("  Registry key: %s\n", cfg.RegistryKey)
	}
	if path, err := config.DefaultEnginePath(); err == nil {
		fmt.Printf("  Default engine path: %s\n", path)
	}
	if cfg.Metrics.Enabled {
		fmt.Printf("  Metrics: enabled\n")
		fmt.Printf("  Pushgateway URL: %s\n", cfg.Metrics.PushgatewayURL)
	} else {
		fmt.Printf("  Metrics: disabled\n")
	}
	if cfg.Apprise.Enabled {
		fmt.Printf("  Notifications: enabled\n")
		fmt.Printf("  Apprise URL: %s\n", cfg.Apprise.URL)
		fmt.Printf("  Notification level: %s\n", cfg.Apprise.Notify)
	} else {
		fmt.Printf("  Notifications: disabled\n")
	}
	fmt.Println()

	fmt.Println("Checks:")
	logger, _ := setupLogging(cfg)

	// Check the backend CLI
	backend, err := domain.ParseBackend(cfg.DefaultClient)
	if err != nil {
		fmt.Printf("  ✗ Backend: %v\n", err)
	} else {
		backendAdapter, err := adapter.New(backend, cfg, adapter.WithLogger(logger))
		if err != nil {
			fmt.Printf("  ✗ Backend: %v\n", err)
		} else if err := backendAdapter.Validate(ctx); err != nil {
			fmt.Printf("  ✗ Backend CLI: %v\n", err)
		} else {
			fmt.Printf("  ✓ Backend CLI %s found\n", backend.Tool())
		}
	}

	httpClient := http.NewClient(http.WithLogger(logger))

	// Check the version marker URL
	if cfg.VersionFileURL == "" {
		fmt.Printf("  ✗ Version URL: version_file_url is not set\n")
	} else if err := httpClient.CheckConnectivity(ctx, cfg.VersionFileURL); err != nil {
		fmt.Printf("  ✗ Version URL: %v\n", err)
	} else {
		fmt.Printf("  ✓ Version URL reachable\n")
	}

	// Check pushgateway if enabled
	if cfg.Metrics.Enabled {
		pushgatewayClient := metrics.NewPushgatewayClient(
			cfg.Metrics.PushgatewayURL,
			metrics.WithHTTPClient(httpClient),
			metrics.WithLogger(logger),
		)

		if err := pushgatewayClient.Validate(ctx); err != nil {
			fmt.Printf("  ✗ Pushgateway: %v\n", err)
		} else {
			fmt.Printf("  ✓ Pushgateway reachable\n")
		}
	}

	// Check apprise if enabled
	if cfg.Apprise.Enabled {
		appriseClient := notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(httpClient),
			notify.WithLogger(logger),
		)

		if err := appriseClient.Validate(ctx); err != nil {
			fmt.Printf("  ✗ Apprise server: %v\n", err)
		} else {
			fmt.Printf("  ✓ Apprise server reachable\n")
		}
	}

	fmt.Println()
	fmt.Println("Validation complete.")
	return nil
}
