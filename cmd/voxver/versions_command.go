package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"voxver/internal/lineage"
	"voxver/internal/manifest"
)

type versionView struct {
	Version  int    `json:"version"`
	State    string `json:"state"`
	RunID    string `json:"run_id,omitempty"`
	Samples  int    `json:"samples,omitempty"`
	Manifest string `json:"manifest_path,omitempty"`
	Updated  string `json:"updated_at,omitempty"`
}

func newVersionsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List dataset versions in the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := lineage.Open(cfg.RegistryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListVersions(cmd.Context())
			if err != nil {
				return err
			}

			views := make([]versionView, 0, len(records))
			for _, record := range records {
				view := versionView{
					Version:  record.Version,
					State:    string(record.State),
					RunID:    record.RunID,
					Manifest: record.ManifestPath,
				}
				if !record.UpdatedAt.IsZero() {
					view.Updated = record.UpdatedAt.UTC().Format(time.RFC3339)
				}
				if record.SummaryJSON != "" {
					var summary manifest.Summary
					if err := json.Unmarshal([]byte(record.SummaryJSON), &summary); err == nil {
						view.Samples = summary.IncludedCount
					}
				}
				views = append(views, view)
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), views)
			}

			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dataset versions recorded")
				return nil
			}

			rows := make([]table.Row, 0, len(views))
			for _, view := range views {
				samples := ""
				if view.Samples > 0 {
					samples = humanize.Comma(int64(view.Samples))
				}
				updated := ""
				if view.Updated != "" {
					if ts, err := time.Parse(time.RFC3339, view.Updated); err == nil {
						updated = humanize.Time(ts)
					}
				}
				rows = append(rows, table.Row{
					fmt.Sprintf("v%d", view.Version),
					view.State,
					samples,
					updated,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderVersionsTable(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the version list as JSON")
	return cmd
}
