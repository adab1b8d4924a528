package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/pack"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [manifest]",
		Short: "Check a manifest against the schema without reading assets",
		Long: `Parse contents.json and list the sticker packs it declares.

Examples:
  stickerctl parse
  stickerctl parse ./assets/contents.json --json
  stickerctl parse --policy-file policy.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifestPath(args)
			log.Debug().Str("manifest", path).Msg("Parsing manifest")

			limits, err := policyFromFlags(cmd)
			if err != nil {
				return err
			}

			packs, err := pack.NewManifestParserFor(limits).ParseFile(path)
			if err != nil {
				return reportFailure(cmd, err)
			}
			return printSummaries(cmd, packs)
		},
	}

	addPolicyFlags(cmd)
	return cmd
}

func printSummaries(cmd *cobra.Command, packs []domain.StickerPack) error {
	summaries := make([]domain.PackSummary, len(packs))
	for i := range packs {
		summaries[i] = packs[i].Summary()
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return writeJSON(cmd, map[string]any{"ok": true, "packs": summaries})
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IDENTIFIER\tNAME\tSTICKERS\tANIMATED\tBYTES")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%d\n", s.Identifier, s.Name, s.StickerCount, s.Animated, s.TotalSize)
	}
	return w.Flush()
}
