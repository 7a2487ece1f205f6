package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contourai-mcp-server/internal/domain"
)

func newStageCmd(root *rootFlags) *cobra.Command {
	cf := &caseFlags{}

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Derive the AJCC 8th edition stage group for a head and neck case",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			c := cf.caseData()
			if c.Site == "" {
				c.Site = domain.SiteHeadAndNeck
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.service.StageGroup(c))
			return nil
		},
	}

	addCaseFlags(cmd, cf)
	return cmd
}
