package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAtlasCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "atlas [level]",
		Short: "List nodal levels or show the boundaries of one level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, code := range a.service.NodalLevels() {
					fmt.Fprintln(out, code)
				}
				return nil
			}

			lb, ok := a.service.LookupLevel(args[0])
			if !ok {
				return fmt.Errorf("unknown nodal level %q", args[0])
			}
			fmt.Fprintf(out, "Level:     %s\n", args[0])
			fmt.Fprintf(out, "Cranial:   %s\n", lb.Cranial)
			fmt.Fprintf(out, "Caudal:    %s\n", lb.Caudal)
			fmt.Fprintf(out, "Medial:    %s\n", lb.Medial)
			fmt.Fprintf(out, "Lateral:   %s\n", lb.Lateral)
			fmt.Fprintf(out, "Anterior:  %s\n", lb.Anterior)
			fmt.Fprintf(out, "Posterior: %s\n", lb.Posterior)
			return nil
		},
	}
}
