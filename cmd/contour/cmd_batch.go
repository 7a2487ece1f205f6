package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/export"
)

type batchFlags struct {
	format string
	outDir string
	save   bool
}

func newBatchCmd(root *rootFlags) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "batch <cases-file>",
		Short: "Evaluate a YAML or JSON list of cases concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, flags, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.format, "format", "", "output format: json, yaml or text (default export.format)")
	f.StringVarP(&flags.outDir, "out", "o", "", "write one report per successful case into this directory")
	f.BoolVar(&flags.save, "save", false, "write the reports into export.dir when --out is not given")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootFlags, flags *batchFlags, path string) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.close()

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	var cases []domain.CaseData
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return fmt.Errorf("parse cases: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases in %s", path)
	}

	format, err := export.ParseFormat(firstNonEmpty(flags.format, a.config.GetExportConfig().Format))
	if err != nil {
		return err
	}

	results, err := a.service.RecommendBatch(cmd.Context(), cases)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dir := a.reportDir(flags.outDir, flags.save); dir != "" {
		for _, r := range results {
			if r.Recommendation == nil {
				fmt.Fprintf(out, "case %d: %s\n", r.Index, r.Error)
				continue
			}
			p, err := export.WriteFile(dir, export.NewReport(r.Case, *r.Recommendation), format)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "case %d: %s\n", r.Index, p)
		}
		return nil
	}

	switch format {
	case export.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case export.FormatText:
		for _, r := range results {
			fmt.Fprintf(out, "=== case %d ===\n", r.Index)
			if r.Recommendation == nil {
				fmt.Fprintf(out, "error: %s\n\n", r.Error)
				continue
			}
			fmt.Fprintln(out, export.Text(export.NewReport(r.Case, *r.Recommendation)))
		}
		return nil
	default:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	}
}
