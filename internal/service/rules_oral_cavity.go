package service

import (
	"fmt"

	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/staging"
)

const oralCavityExtension = "Advanced oral cavity primary: assess mandibular cortex, masticator space and floor-of-mouth extension."

func oralCavityBranch() *ruleBranch {
	return &ruleBranch{
		site:    domain.SiteHeadAndNeck,
		subsite: domain.SubsiteOralCavity,
		base: func(domain.CaseData) workingState {
			return newState("5 mm", domain.Ipsilateral, domain.RiskLow, "Ia", "Ib", "IIa", "IIb", "III")
		},
		rules: []Rule{
			{
				Code: "OC-MARGIN",
				Name: "Close or positive resection margin",
				When: func(c domain.CaseData) bool {
					return c.MarginStatus == domain.MarginClose || c.MarginStatus == domain.MarginPositive
				},
				Apply: func(c domain.CaseData, s workingState) workingState {
					if c.MarginStatus == domain.MarginPositive {
						s = s.withMargin("10 mm")
					}
					return s.raiseRisk(domain.RiskIntermediate)
				},
			},
			{
				Code: "OC-DOI",
				Name: "Depth of invasion ≥ 10 mm",
				When: func(c domain.CaseData) bool { return c.DOI.AtLeast(10) },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.raiseRisk(domain.RiskIntermediate)
				},
			},
			{
				Code: "OC-PNI-LVI",
				Name: "Perineural or lymphovascular invasion",
				When: func(c domain.CaseData) bool { return c.PNI == domain.Yes || c.LVI == domain.Yes },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.raiseRisk(domain.RiskIntermediate)
				},
			},
			{
				Code: "OC-MIDLINE",
				Name: "Midline or crossing primary: bilateral neck",
				When: midline,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Bilateral)
				},
			},
			{
				Code: "OC-ADV-T",
				Name: "T3/T4 primary: deep extension coverage",
				When: advancedT,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withDeepExtension(oralCavityExtension).raiseRisk(domain.RiskIntermediate)
				},
			},
			{
				Code: "OC-NODAL",
				Name: "Advanced N stage or ENE: bilateral levels I–IV",
				When: func(c domain.CaseData) bool { return advancedN(c) || enePresent(c) },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Bilateral).
						withLevels("Ia", "Ib", "IIa", "IIb", "III", "IV").
						setRisk(domain.RiskHigh)
				},
			},
		},
		describe: func(c domain.CaseData, s workingState) volumes {
			stage := staging.OralCavityStageGroup(c.TStage, c.NStage)
			return volumes{
				Summary:      headNeckSummary("Oral cavity carcinoma", stage, s),
				GTV:          "Preoperative primary and nodal extent reconstructed from imaging; residual gross disease if present.",
				CTV:          fmt.Sprintf("Tumor bed + %s including the surgical bed and flap interface.", s.ctvMargin),
				PTV:          "CTV + 3–5 mm depending on immobilization accuracy.",
				StageGroup:   stage,
				ElectiveNote: "Elective nodal levels depending on N stage.",
			}
		},
		citations: []domain.Citation{eortcNodalAtlas, neckLevelConsensus, ajcc8},
	}
}
