package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voxver/internal/lineage"
	"voxver/internal/manifest"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <version>",
		Short: "Show the stored summary for one dataset version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseVersionArg(args[0])
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := lineage.Open(cfg.RegistryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.GetVersion(cmd.Context(), version)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("version %d is not in the registry", version)
			}

			if jsonOut {
				if record.SummaryJSON == "" {
					return printJSON(cmd.OutOrStdout(), map[string]string{
						"dataset_version": fmt.Sprintf("v%d", record.Version),
						"state":           string(record.State),
					})
				}
				var summary manifest.Summary
				if err := json.Unmarshal([]byte(record.SummaryJSON), &summary); err != nil {
					return fmt.Errorf("decode stored summary: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), summary)
			}

			printVersionRecord(cmd, record)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the stored summary as JSON")
	return cmd
}

func printVersionRecord(cmd *cobra.Command, record *lineage.VersionRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Version:  v%d\n", record.Version)
	fmt.Fprintf(out, "State:    %s\n", record.State)
	if record.RunID != "" {
		fmt.Fprintf(out, "Run:      %s\n", record.RunID)
	}
	if record.ManifestPath != "" {
		fmt.Fprintf(out, "Manifest: %s\n", record.ManifestPath)
	}
	if record.FrozenPath != "" {
		fmt.Fprintf(out, "Frozen:   %s\n", record.FrozenPath)
	}

	if record.SummaryJSON == "" {
		return
	}
	var summary manifest.Summary
	if err := json.Unmarshal([]byte(record.SummaryJSON), &summary); err != nil {
		fmt.Fprintf(out, "Summary:  (unreadable: %v)\n", err)
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSplitTable(summary))
	if len(summary.SplitQualityWarnings) > 0 {
		fmt.Fprintln(out)
		for _, warning := range summary.SplitQualityWarnings {
			fmt.Fprintf(out, "Warning: %s\n", warning)
		}
	}
}

func parseVersionArg(arg string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(arg), "v")
	version, err := strconv.Atoi(trimmed)
	if err != nil || version < 1 {
		return 0, fmt.Errorf("invalid version %q: expected a positive number like 2 or v2", arg)
	}
	return version, nil
}
