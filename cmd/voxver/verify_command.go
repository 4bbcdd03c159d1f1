package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voxver/internal/lineage"
)

// newVerifyCommand re-checks lineage monotonicity from the artifacts
// themselves: every frozen version's test identities must appear in the
// frozen CSV of every later frozen version. This catches artifacts edited or
// lost behind the registry's back.
func newVerifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify frozen test-set lineage across all versions",
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

			out := cmd.OutOrStdout()
			frozenSets := map[int]map[string]struct{}{}
			var frozenVersions []int
			for _, record := range records {
				if record.State != lineage.StateFrozen {
					continue
				}
				if record.FrozenPath == "" {
					return fmt.Errorf("version %d is frozen but records no artifact path", record.Version)
				}
				identities, err := lineage.ReadFrozenCSV(record.FrozenPath, record.Version)
				if err != nil {
					return fmt.Errorf("version %d: %w", record.Version, err)
				}
				set := make(map[string]struct{}, len(identities))
				for _, id := range identities {
					set[id.PairSHA256] = struct{}{}
				}
				frozenSets[record.Version] = set
				frozenVersions = append(frozenVersions, record.Version)
			}

			if len(frozenVersions) == 0 {
				fmt.Fprintln(out, "No frozen versions to verify")
				return nil
			}

			violations := 0
			for i, earlier := range frozenVersions {
				for _, later := range frozenVersions[i+1:] {
					for pair := range frozenSets[earlier] {
						if _, ok := frozenSets[later][pair]; !ok {
							violations++
							fmt.Fprintf(out, "VIOLATION: identity %s frozen in v%d is absent from v%d\n",
								pair, earlier, later)
						}
					}
				}
			}

			if violations > 0 {
				return fmt.Errorf("%w: %d frozen identities missing from later versions",
					lineage.ErrLineageViolation, violations)
			}
			fmt.Fprintf(out, "Lineage verified across %d frozen versions\n", len(frozenVersions))
			return nil
		},
	}
	return cmd
}
