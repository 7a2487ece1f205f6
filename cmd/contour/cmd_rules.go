package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRulesCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rule chain of every site branch in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SITE\tSUBSITE\tCODE\tRULE")
			for _, r := range a.service.Rules() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Site, r.Subsite, r.Code, r.Name)
			}
			return w.Flush()
		},
	}
}
