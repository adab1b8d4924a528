package main

import (
	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective certification policy as YAML",
		Long: `Print the limits packs are certified against. The output is a valid
policy file and can be edited and passed back with --policy-file.

Examples:
  stickerctl policy > policy.yaml
  stickerctl policy --policy v1
  stickerctl policy --policy-file policy.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limits, err := policyFromFlags(cmd)
			if err != nil {
				return err
			}

			out, err := limits.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	addPolicyFlags(cmd)
	return cmd
}
