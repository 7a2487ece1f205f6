package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/export"
)

type evaluateFlags struct {
	caseFlags
	caseFile string
	format   string
	outDir   string
	save     bool
}

func newEvaluateCmd(root *rootFlags) *cobra.Command {
	flags := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Recommend target volumes and nodal coverage for one case",
		Example: `  contour evaluate --site "Head & Neck" --subsite Oropharynx --t T1 --n N0 --hpv Positive --tumor-laterality Lateralized
  contour evaluate --site Breast --margin-mm 1 --format json
  contour evaluate --file case.yaml --out ./reports
  contour evaluate --file case.yaml --save`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	addCaseFlags(cmd, &flags.caseFlags)
	f.StringVarP(&flags.caseFile, "file", "f", "", "read the case from a YAML or JSON file (- for stdin)")
	f.StringVar(&flags.format, "format", "", "output format: json, yaml or text (default export.format)")
	f.StringVarP(&flags.outDir, "out", "o", "", "write the report into this directory instead of stdout")
	f.BoolVar(&flags.save, "save", false, "write the report into export.dir when --out is not given")
	return cmd
}

func addCaseFlags(cmd *cobra.Command, cf *caseFlags) {
	f := cmd.Flags()
	f.StringVar(&cf.site, "site", "", "primary site: Head & Neck, Breast or Prostate")
	f.StringVar(&cf.subsite, "subsite", "", "Head & Neck subsite: Oropharynx, Oral Cavity, Larynx or Nasopharynx")
	f.StringVar(&cf.oropharynxSubsite, "oropharynx-subsite", "", "Base of Tongue, Tonsil, Soft Palate or Posterior Pharyngeal Wall")
	f.StringVar(&cf.tStage, "t", "", "clinical T stage, e.g. T2")
	f.StringVar(&cf.nStage, "n", "", "clinical N stage, e.g. N2b")
	f.StringVar(&cf.ene, "ene", "", "ENE status: Not Present, Microscopic, Macroscopic or Present (unspecified)")
	f.StringVar(&cf.hpv, "hpv", "", "HPV status: Positive, Negative or Unknown")
	f.StringVar(&cf.tumorLaterality, "tumor-laterality", "", "Lateralized or Midline / Crossing midline")
	f.StringVar(&cf.marginMm, "margin-mm", "", "closest resection margin in mm")
	f.StringVar(&cf.marginStatus, "margin-status", "", "clear, Close (<5mm) or Positive")
	f.StringVar(&cf.doi, "doi", "", "depth of invasion in mm")
	f.StringVar(&cf.pni, "pni", "", "perineural invasion: Yes or No")
	f.StringVar(&cf.lvi, "lvi", "", "lymphovascular invasion: Yes or No")
}

func runEvaluate(cmd *cobra.Command, root *rootFlags, flags *evaluateFlags) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.close()

	c := flags.caseData()
	if flags.caseFile != "" {
		data, err := readInput(flags.caseFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
		c = domain.CaseData{}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("parse case: %w", err)
		}
	}

	format, err := export.ParseFormat(firstNonEmpty(flags.format, a.config.GetExportConfig().Format))
	if err != nil {
		return err
	}

	rec, err := a.service.Recommend(cmd.Context(), c)
	if err != nil {
		return err
	}
	report := export.NewReport(c, rec)

	if dir := a.reportDir(flags.outDir, flags.save); dir != "" {
		path, err := export.WriteFile(dir, report, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}
	return export.Encode(cmd.OutOrStdout(), report, format)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
