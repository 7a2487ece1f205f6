package service

import (
	"fmt"
	"strings"

	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/staging"
)

var (
	eortcNodalAtlas = domain.Citation{
		Organization: "EORTC",
		Title:        "Head & Neck Nodal Level Atlas",
		Year:         2018,
		Evidence:     domain.EvidenceHigh,
	}
	neckLevelConsensus = domain.Citation{
		Organization: "DAHANCA/EORTC/RTOG",
		Title:        "Delineation of the neck node levels for head and neck tumors: a 2013 update",
		Year:         2014,
		Evidence:     domain.EvidenceHigh,
	}
	astroOropharynx = domain.Citation{
		Organization: "ASTRO",
		Title:        "Radiation Therapy for Oropharyngeal Squamous Cell Carcinoma: Clinical Practice Guideline",
		Year:         2017,
		Evidence:     domain.EvidenceMedium,
	}
	ajcc8 = domain.Citation{
		Organization: "AJCC",
		Title:        "AJCC Cancer Staging Manual, 8th Edition",
		Year:         2017,
		Evidence:     domain.EvidenceHigh,
	}
)

var oropharynxDeepExtension = map[domain.OropharynxSubsite]string{
	domain.OropharynxBaseOfTongue:  "Base of tongue T3/T4: extend CTV to vallecula, pre-epiglottic space and contralateral base of tongue.",
	domain.OropharynxTonsil:        "Tonsil T3/T4: cover parapharyngeal space and medial pterygoid; assess pterygoid plates.",
	domain.OropharynxSoftPalate:    "Soft palate T3/T4: extend toward nasopharynx and pterygopalatine fossa; follow palatine nerves for perineural spread.",
	domain.OropharynxPosteriorWall: "Posterior pharyngeal wall T3/T4: include prevertebral fascia and retropharyngeal space.",
}

const (
	oropharynxDefaultExtension = "Advanced T stage: review parapharyngeal and pre-epiglottic space extension and cover it in the high-dose CTV."
	oropharynxT4Extension      = "T4 disease: assess mandible, medial pterygoid and larynx invasion; extend CTV along involved structures."
)

func oropharynxBranch() *ruleBranch {
	return &ruleBranch{
		site:    domain.SiteHeadAndNeck,
		subsite: domain.SubsiteOropharynx,
		base: func(domain.CaseData) workingState {
			return newState("5 mm", domain.Ipsilateral, domain.RiskLow, "IIa", "IIb", "III", "IV")
		},
		rules: []Rule{
			{
				Code: "OPX-DEESC",
				Name: "HPV-positive lateralized early disease: ipsilateral neck",
				When: func(c domain.CaseData) bool {
					return c.HPVStatus == domain.HPVPositive &&
						c.TumorLaterality == domain.TumorLateralized &&
						earlyN(c) && !enePresent(c) && !advancedT(c)
				},
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Ipsilateral).setRisk(domain.RiskLow)
				},
			},
			{
				Code: "OPX-HPVNEG",
				Name: "HPV-negative disease",
				When: func(c domain.CaseData) bool { return c.HPVStatus == domain.HPVNegative },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.raiseRisk(domain.RiskIntermediate)
				},
			},
			{
				Code: "OPX-MIDLINE",
				Name: "Midline or crossing primary: bilateral neck",
				When: midline,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Bilateral)
				},
			},
			{
				Code: "OPX-N2",
				Name: "N2 nodal disease: bilateral neck with retropharyngeal nodes",
				When: func(c domain.CaseData) bool { return staging.ContainsToken(c.NStage, "N2") },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Bilateral).raiseRisk(domain.RiskIntermediate).withLevels("RPN")
				},
			},
			{
				Code: "OPX-N3",
				Name: "N3 nodal disease: bilateral neck including level V",
				When: func(c domain.CaseData) bool { return staging.ContainsToken(c.NStage, "N3") },
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withLaterality(domain.Bilateral).setRisk(domain.RiskHigh).withLevels("RPN", "V")
				},
			},
			{
				Code: "OPX-ENE-MICRO",
				Name: "Microscopic ENE: 7–10 mm nodal CTV",
				When: eneMicroscopic,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withMargin("7–10 mm").raiseRisk(domain.RiskIntermediate)
				},
			},
			{
				Code: "OPX-ENE-MACRO",
				Name: "Macroscopic ENE: 10 mm nodal CTV, bilateral neck",
				When: eneMacroscopic,
				Apply: func(_ domain.CaseData, s workingState) workingState {
					return s.withMargin("10 mm").setRisk(domain.RiskHigh).withLaterality(domain.Bilateral).withLevels("RPN")
				},
			},
			{
				Code: "OPX-ADV-T",
				Name: "T3/T4 primary: deep extension coverage",
				When: advancedT,
				Apply: func(c domain.CaseData, s workingState) workingState {
					advisory, ok := oropharynxDeepExtension[c.OropharynxSubsite]
					if !ok {
						advisory = oropharynxDefaultExtension
					}
					s = s.withDeepExtension(advisory)
					if t4(c) {
						s = s.withDeepExtension(oropharynxT4Extension)
					}
					return s.setRisk(domain.RiskHigh).withLaterality(domain.Bilateral)
				},
			},
		},
		describe: func(c domain.CaseData, s workingState) volumes {
			stage := staging.OropharynxStageGroup(c.TStage, c.NStage, c.HPVStatus)
			return volumes{
				Summary:      headNeckSummary(oropharynxLabel(c), stage, s),
				GTV:          "All gross primary and radiologically involved nodal disease on imaging.",
				CTV:          fmt.Sprintf("GTV + %s anatomically trimmed respecting air, bone, and fascia.", s.ctvMargin),
				PTV:          "CTV + 3–5 mm depending on immobilization accuracy.",
				StageGroup:   stage,
				ElectiveNote: "Elective nodal levels depending on N stage.",
			}
		},
		citations: []domain.Citation{eortcNodalAtlas, astroOropharynx, ajcc8},
	}
}

func oropharynxLabel(c domain.CaseData) string {
	primary := "oropharyngeal carcinoma"
	if c.OropharynxSubsite != "" {
		primary = fmt.Sprintf("oropharyngeal carcinoma of the %s", strings.ToLower(string(c.OropharynxSubsite)))
	}
	switch c.HPVStatus {
	case domain.HPVPositive:
		return "HPV-positive " + primary
	case domain.HPVNegative:
		return "HPV-negative " + primary
	default:
		return "HPV-unknown " + primary
	}
}
