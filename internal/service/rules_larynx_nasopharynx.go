package service

import (
	"fmt"

	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/staging"
)

var npcConsensus = domain.Citation{
	Organization: "International NPC Consensus Group",
	Title:        "International guideline for the delineation of the clinical target volumes (CTV) for nasopharyngeal carcinoma",
	Year:         2018,
	Evidence:     domain.EvidenceHigh,
}

const (
	larynxExtension      = "Advanced laryngeal primary: cover paraglottic and pre-epiglottic spaces; assess thyroid cartilage invasion."
	larynxT4Extension    = "T4 larynx: extralaryngeal spread; include level VI and the thyroid bed."
	nasopharynxExtension = "Advanced nasopharyngeal primary: cover skull base, foramen ovale/rotundum, pterygopalatine fossa and cavernous sinus as involved."
)

func larynxBranch() *ruleBranch {
	return &ruleBranch{
		site:    domain.SiteHeadAndNeck,
		subsite: domain.SubsiteLarynx,
		base: func(domain.CaseData) workingState {
			return newState("5 mm", domain.Ipsilateral, domain.RiskLow, "IIa", "IIb", "III", "IV")
		},
		rules: []Rule{
			{
				Code: "LX-MIDLINE",
				Name: "Midline or crossing primary: bilateral neck",
				When: midline,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Bilateral)
				},
			},
			{
				Code: "LX-NODAL",
				Name: "N2/N3 neck: bilateral coverage",
				When: advancedN,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Bilateral).raiseRisk(domain.RiskIntermediate)
				},
			},
			{
				Code: "LX-ENE",
				Name: "Extranodal extension: high risk",
				When: enePresent,
				Apply: func(c domain.CaseData, s workingState) workingState {
					if eneMacroscopic(c) {
						return s.withMargin("10 mm").setRisk(domain.RiskHigh)
					}
					return s.withMargin("7–10 mm").setRisk(domain.RiskHigh)
				},
			},
			{
				Code: "LX-ADV-T",
				Name: "T3/T4 primary: deep extension coverage",
				When: advancedT,
				Apply: func(c domain.CaseData, s workingState) workingState {
					s = s.withDeepExtension(larynxExtension)
					if t4(c) {
						s = s.withDeepExtension(larynxT4Extension).withLevels("VIa")
					}
					return s.setRisk(domain.RiskHigh).withLaterality(domain.Bilateral)
				},
			},
		},
		describe: func(c domain.CaseData, s workingState) volumes {
			stage := staging.LarynxStageGroup(c.TStage, c.NStage)
			return volumes{
				Summary:      headNeckSummary("Laryngeal carcinoma", stage, s),
				GTV:          "Gross primary on endoscopy and imaging plus involved nodes.",
				CTV:          fmt.Sprintf("GTV + %s respecting air and uninvolved cartilage.", s.ctvMargin),
				PTV:          "CTV + 3–5 mm depending on immobilization accuracy.",
				StageGroup:   stage,
				ElectiveNote: "No elective nodal irradiation for early glottic disease.",
			}
		},
		citations: []domain.Citation{eortcNodalAtlas, neckLevelConsensus, ajcc8},
	}
}

func nasopharynxBranch() *ruleBranch {
	return &ruleBranch{
		site:    domain.SiteHeadAndNeck,
		subsite: domain.SubsiteNasopharynx,
		base: func(domain.CaseData) workingState {
			return newState("5 mm", domain.Bilateral, domain.RiskIntermediate, "RPN", "IIa", "IIb", "III", "V")
		},
		rules: []Rule{
			{
				Code: "NPC-N2",
				Name: "N2 nodal disease: extend to level IV",
				When: func(c domain.CaseData) bool { return staging.ContainsToken(c.NStage, "N2") },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLevels("IV").setRisk(domain.RiskHigh)
				},
			},
			{
				Code: "NPC-N3",
				Name: "N3 nodal disease: extend to level IV",
				When: func(c domain.CaseData) bool { return staging.ContainsToken(c.NStage, "N3") },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLevels("IV").setRisk(domain.RiskHigh)
				},
			},
			{
				Code: "NPC-ENE",
				Name: "Macroscopic ENE: 10 mm nodal CTV",
				When: eneMacroscopic,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withMargin("10 mm").setRisk(domain.RiskHigh)
				},
			},
			{
				Code: "NPC-ADV-T",
				Name: "T3/T4 primary: skull base coverage",
				When: advancedT,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withDeepExtension(nasopharynxExtension).setRisk(domain.RiskHigh)
				},
			},
		},
		describe: func(c domain.CaseData, s workingState) volumes {
			stage := staging.NasopharynxStageGroup(c.TStage, c.NStage)
			return volumes{
				Summary:      headNeckSummary("Nasopharyngeal carcinoma", stage, s),
				GTV:          "Primary and nodal disease on MRI fused with planning CT.",
				CTV:          fmt.Sprintf("GTV + %s high-risk CTV, with whole nasopharynx in the intermediate-risk CTV.", s.ctvMargin),
				PTV:          "CTV + 3–5 mm depending on immobilization accuracy.",
				StageGroup:   stage,
				ElectiveNote: "Bilateral upper neck coverage.",
			}
		},
		citations: []domain.Citation{npcConsensus, neckLevelConsensus, ajcc8},
	}
}
