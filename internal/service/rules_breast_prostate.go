package service

import (
	"fmt"

	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/staging"
)

var (
	estroBreast = domain.Citation{
		Organization: "ESTRO",
		Title:        "Breast CTV Guidelines",
		Year:         2015,
		Evidence:     domain.EvidenceHigh,
	}
	rtogProstate = domain.Citation{
		Organization: "RTOG",
		Title:        "Prostate Contouring Atlas",
		Year:         2009,
		Evidence:     domain.EvidenceHigh,
	}
)

// closeBreastMargin is true only for a numeric margin of 2 mm or less.
func closeBreastMargin(c domain.CaseData) bool {
	return c.MarginMm.AtMost(2)
}

func seminalVesicleRisk(c domain.CaseData) bool {
	return staging.ContainsToken(c.TStage, "T3")
}

func breastBranch() *ruleBranch {
	return &ruleBranch{
		site: domain.SiteBreast,
		base: func(domain.CaseData) workingState {
			return newState("5 mm", domain.Ipsilateral, domain.RiskLow)
		},
		rules: []Rule{
			{
				Code: "BR-CLOSE-MARGIN",
				Name: "Margin ≤ 2 mm: 15 mm tumor bed expansion",
				When: closeBreastMargin,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withMargin("15 mm").setRisk(domain.RiskHigh)
				},
			},
			{
				Code: "BR-NODE-POS",
				Name: "Node-positive: regional nodal irradiation",
				When: nodePositive,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLevels("Axilla I", "Axilla II", "Axilla III", "SCV").raiseRisk(domain.RiskIntermediate)
				},
			},
		},
		describe: func(c domain.CaseData, s workingState) volumes {
			v := volumes{
				PTV:          "CTV + 5 mm.",
				StageGroup:   domain.StageUncertain,
				ElectiveNote: "Regional nodes if N positive.",
			}
			if closeBreastMargin(c) {
				v.Summary = "Close/positive margin: high-risk tumor bed expansion recommended."
				v.GTV = "Tumor bed defined by surgical clips and imaging."
				v.CTV = fmt.Sprintf("Tumor bed + %s limited to breast tissue.", s.ctvMargin)
				return v
			}
			v.Summary = "Standard adjuvant whole breast irradiation."
			v.GTV = "Tumor bed."
			v.CTV = fmt.Sprintf("Whole breast CTV with %s margin, limited to breast tissue.", s.ctvMargin)
			return v
		},
		citations: []domain.Citation{estroBreast},
	}
}

func prostateBranch() *ruleBranch {
	return &ruleBranch{
		site: domain.SiteProstate,
		base: func(domain.CaseData) workingState {
			return newState("5–7 mm", domain.Ipsilateral, domain.RiskLow)
		},
		rules: []Rule{
			{
				Code: "PR-T3",
				Name: "T3 disease: seminal vesicle inclusion",
				When: seminalVesicleRisk,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withMargin("5–7 mm (posterior margin 3–5 mm)").setRisk(domain.RiskHigh)
				},
			},
			{
				Code: "PR-N1",
				Name: "Node-positive: elective pelvic nodes",
				When: func(c domain.CaseData) bool { return staging.ContainsToken(c.NStage, "N1") },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Bilateral).
						withLevels("Obturator", "Internal iliac", "External iliac", "Presacral").
						setRisk(domain.RiskHigh)
				},
			},
		},
		describe: func(c domain.CaseData, s workingState) volumes {
			v := volumes{
				PTV:        fmt.Sprintf("CTV + %s.", s.ctvMargin),
				StageGroup: domain.StageUncertain,
			}
			if seminalVesicleRisk(c) {
				v.Summary = "High-risk prostate cancer: seminal vesicle inclusion required."
				v.GTV = "Prostate ± involved seminal vesicles."
				v.CTV = "Prostate + proximal seminal vesicles."
				v.ElectiveNote = "Pelvic nodes if high risk."
				return v
			}
			v.Summary = "Localized prostate cancer."
			v.GTV = "Prostate gland."
			v.CTV = "Prostate only."
			v.ElectiveNote = "No elective nodes in low risk."
			return v
		},
		citations: []domain.Citation{rtogProstate},
	}
}
