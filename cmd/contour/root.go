// contour is the command line front end of the contouring recommendation
// engine.
//
// Usage:
//
//	contour evaluate --site "Head & Neck" --subsite Oropharynx --t T2 --n N1 [--format text] [--out DIR]
//	contour batch cases.yaml [--format yaml] [--out DIR]
//	contour atlas [level]
//	contour stage --subsite Oropharynx --t T3 --n N0 --hpv Positive
//	contour rules
//	contour serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "contour",
		Short: "Radiotherapy contouring recommendations from case attributes",
		Long: "contour maps tumor site, stage and pathology findings to target volume,\n" +
			"elective nodal coverage and margin recommendations with literature citations.\n" +
			"Output is decision support only and must be reviewed by a clinician.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default: ./config.yaml, ./config/config.yaml or /etc/contourai/config.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		newEvaluateCmd(flags),
		newBatchCmd(flags),
		newAtlasCmd(flags),
		newStageCmd(flags),
		newRulesCmd(flags),
		newServeCmd(flags),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
