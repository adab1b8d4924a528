package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/freewebtopdf/sticker-certifier/internal/assets"
	"github.com/freewebtopdf/sticker-certifier/internal/pack"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Certify every sticker pack of a manifest",
		Long: `Parse contents.json, then check every pack and its tray and sticker
images against the certification policy. Assets are read from
<assets>/<identifier>/<file>; the assets directory defaults to the
directory holding the manifest.

Examples:
  stickerctl validate
  stickerctl validate ./assets/contents.json --policy v1
  stickerctl validate manifest.json --assets ./assets --policy-file policy.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifestPath(args)
			assetsDir, _ := cmd.Flags().GetString("assets")
			if assetsDir == "" {
				assetsDir = filepath.Dir(path)
			}
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			if concurrency < 1 {
				return fmt.Errorf("concurrency must be at least 1")
			}

			limits, err := policyFromFlags(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}

			log.Info().
				Str("manifest", path).
				Str("assets", assetsDir).
				Str("policy", limits.Version).
				Msg("Certifying manifest")

			validator := pack.NewValidator(assets.NewDirStore(assetsDir, 0), limits)
			svc := pack.NewService(pack.NewManifestParserFor(limits), pack.NewCertifier(validator, concurrency))

			packs, err := svc.Certify(cmd.Context(), data)
			if err != nil {
				return reportFailure(cmd, err)
			}

			if err := printSummaries(cmd, packs); err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "%d sticker pack(s) certified\n", len(packs))
			}
			return nil
		},
	}

	cmd.Flags().String("assets", "", "Assets directory (default: manifest directory)")
	cmd.Flags().Int("concurrency", 1, "Packs validated in parallel")
	addPolicyFlags(cmd)

	return cmd
}
