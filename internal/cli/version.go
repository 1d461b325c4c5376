package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreforge/enginesync/pkg/version"
)

var versionOutput string

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		RunE:  runVersion,
	}

	cmd.Flags().StringVarP(&versionOutput, "output", "o", "text", "output format (text, json)")

	return cmd
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()

	switch versionOutput {
	case "json":
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Println(string(out))
	case "text":
		fmt.Println(info.String())
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", versionOutput)
	}

	return nil
}
