// Package domain contains the core entities for radiotherapy contouring
// recommendations: the case attributes collected from the clinician, the
// recommendation produced by the rule engine and the anatomical atlas records
// used to annotate elective nodal levels.
//
// Reference: Grégoire V et al. (2014) Delineation of the neck node levels for
// head and neck tumors: a 2013 update. Radiother Oncol. 110(1):172-81.
package domain

import (
	"errors"
	"fmt"
)

// Site is the primary tumor site selected on the case form.
type Site string

const (
	SiteHeadAndNeck Site = "Head & Neck"
	SiteBreast      Site = "Breast"
	SiteProstate    Site = "Prostate"
)

// Subsite refines a Head & Neck site.
type Subsite string

const (
	SubsiteOropharynx  Subsite = "Oropharynx"
	SubsiteOralCavity  Subsite = "Oral Cavity"
	SubsiteLarynx      Subsite = "Larynx"
	SubsiteNasopharynx Subsite = "Nasopharynx"
)

// OropharynxSubsite refines an oropharyngeal primary.
type OropharynxSubsite string

const (
	OropharynxBaseOfTongue  OropharynxSubsite = "Base of Tongue"
	OropharynxTonsil        OropharynxSubsite = "Tonsil"
	OropharynxSoftPalate    OropharynxSubsite = "Soft Palate"
	OropharynxPosteriorWall OropharynxSubsite = "Posterior Pharyngeal Wall"
)

// ENEStatus is the extranodal extension finding.
type ENEStatus string

const (
	ENENotPresent  ENEStatus = "Not Present"
	ENEMicroscopic ENEStatus = "Microscopic"
	ENEMacroscopic ENEStatus = "Macroscopic"
	// ENEPresent is ENE reported without grading. It is handled as
	// macroscopic wherever severity matters.
	ENEPresent ENEStatus = "Present (unspecified)"
)

// HPVStatus is the p16/HPV result.
type HPVStatus string

const (
	HPVUnknown  HPVStatus = "Unknown"
	HPVPositive HPVStatus = "Positive"
	HPVNegative HPVStatus = "Negative"
)

// TumorLaterality describes the primary's relation to midline.
type TumorLaterality string

const (
	TumorLateralized TumorLaterality = "Lateralized"
	TumorMidline     TumorLaterality = "Midline / Crossing midline"
)

// MarginStatus is the pathological resection margin (oral cavity).
type MarginStatus string

const (
	MarginClear    MarginStatus = "clear"
	MarginClose    MarginStatus = "Close (<5mm)"
	MarginPositive MarginStatus = "Positive"
)

// YesNo is a tri-state flag; the empty value means "not reported".
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// Laterality of elective nodal coverage.
type Laterality string

const (
	Ipsilateral Laterality = "Ipsilateral"
	Bilateral   Laterality = "Bilateral"
)

// RiskLevel is the coarse risk tier of a recommendation.
type RiskLevel string

const (
	RiskLow          RiskLevel = "LOW"
	RiskIntermediate RiskLevel = "INTERMEDIATE"
	RiskHigh         RiskLevel = "HIGH"
)

// EvidenceGrade grades a supporting citation.
type EvidenceGrade string

const (
	EvidenceHigh   EvidenceGrade = "HIGH"
	EvidenceMedium EvidenceGrade = "MEDIUM"
	EvidenceLow    EvidenceGrade = "LOW"
)

// StageUncertain is reported when a (T, N) pair is not in the AJCC tables.
const StageUncertain = "Stage Uncertain"

// Validation errors for case attributes
var (
	ErrMissingSite        = errors.New("site is required")
	ErrUnknownSite        = errors.New("unknown site")
	ErrUnknownSubsite     = errors.New("unknown subsite")
	ErrUnknownENEStatus   = errors.New("unknown ENE status")
	ErrUnknownHPVStatus   = errors.New("unknown HPV status")
	ErrUnknownLaterality  = errors.New("unknown tumor laterality")
	ErrUnknownMargin      = errors.New("unknown margin status")
	ErrInvalidMeasurement = errors.New("measurement is not numeric")
)

// IsValid reports whether the site is one the form offers.
func (s Site) IsValid() bool {
	switch s {
	case SiteHeadAndNeck, SiteBreast, SiteProstate:
		return true
	default:
		return false
	}
}

// IsValid reports whether the subsite is one the form offers.
func (s Subsite) IsValid() bool {
	switch s {
	case SubsiteOropharynx, SubsiteOralCavity, SubsiteLarynx, SubsiteNasopharynx:
		return true
	default:
		return false
	}
}

// IsValid reports whether the ENE status is a known value.
func (e ENEStatus) IsValid() bool {
	switch e {
	case ENENotPresent, ENEMicroscopic, ENEMacroscopic, ENEPresent:
		return true
	default:
		return false
	}
}

// IsMacroscopic reports whether the status is graded macroscopic or is
// reported without a grade.
func (e ENEStatus) IsMacroscopic() bool {
	return e == ENEMacroscopic || e == ENEPresent
}

// IsPresent reports any positive ENE finding.
func (e ENEStatus) IsPresent() bool {
	return e == ENEMicroscopic || e.IsMacroscopic()
}

// IsValid reports whether the HPV status is a known value.
func (h HPVStatus) IsValid() bool {
	switch h {
	case HPVUnknown, HPVPositive, HPVNegative:
		return true
	default:
		return false
	}
}

// IsValid reports whether the laterality is a known value.
func (t TumorLaterality) IsValid() bool {
	return t == TumorLateralized || t == TumorMidline
}

// IsValid reports whether the margin status is a known value.
func (m MarginStatus) IsValid() bool {
	switch m {
	case MarginClear, MarginClose, MarginPositive:
		return true
	default:
		return false
	}
}

// Rank orders risk levels; unknown values rank below LOW.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskIntermediate:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// AtLeast returns the more severe of r and floor.
func (r RiskLevel) AtLeast(floor RiskLevel) RiskLevel {
	if floor.Rank() > r.Rank() {
		return floor
	}
	return r
}

// LogFields returns structured logging fields for audit trails.
func (r RiskLevel) LogFields() map[string]any {
	return map[string]any{
		"risk_level": string(r),
		"risk_rank":  r.Rank(),
	}
}

// CaseData holds the attributes entered on the case form. Every field is
// optional from the engine's point of view: an absent value never satisfies
// a rule condition.
type CaseData struct {
	Site              Site              `json:"site" yaml:"site"`
	Subsite           Subsite           `json:"subsite,omitempty" yaml:"subsite,omitempty"`
	OropharynxSubsite OropharynxSubsite `json:"oropharynxSubsite,omitempty" yaml:"oropharynxSubsite,omitempty"`
	TStage            string            `json:"tStage,omitempty" yaml:"tStage,omitempty"`
	NStage            string            `json:"nStage,omitempty" yaml:"nStage,omitempty"`
	ENEStatus         ENEStatus         `json:"eneStatus,omitempty" yaml:"eneStatus,omitempty"`
	HPVStatus         HPVStatus         `json:"hpvStatus,omitempty" yaml:"hpvStatus,omitempty"`
	TumorLaterality   TumorLaterality   `json:"tumorLaterality,omitempty" yaml:"tumorLaterality,omitempty"`
	MarginMm          Measurement       `json:"marginMm,omitempty" yaml:"marginMm,omitempty"`
	MarginStatus      MarginStatus      `json:"marginStatus,omitempty" yaml:"marginStatus,omitempty"`
	DOI               Measurement       `json:"doi,omitempty" yaml:"doi,omitempty"`
	PNI               YesNo             `json:"pni,omitempty" yaml:"pni,omitempty"`
	LVI               YesNo             `json:"lvi,omitempty" yaml:"lvi,omitempty"`
}

// Validate checks the case the way the form does before submitting it.
// The rule engine never calls this; unknown or missing values simply fail to
// match any rule there.
func (c *CaseData) Validate() error {
	if c.Site == "" {
		return fmt.Errorf("case validation: %w", NewValidationError("site", ErrMissingSite.Error(), c.Site))
	}
	if !c.Site.IsValid() {
		return fmt.Errorf("case validation: %w: %s", ErrUnknownSite, c.Site)
	}
	if c.Subsite != "" && !c.Subsite.IsValid() {
		return fmt.Errorf("case validation: %w: %s", ErrUnknownSubsite, c.Subsite)
	}
	if c.ENEStatus != "" && !c.ENEStatus.IsValid() {
		return fmt.Errorf("case validation: %w: %s", ErrUnknownENEStatus, c.ENEStatus)
	}
	if c.HPVStatus != "" && !c.HPVStatus.IsValid() {
		return fmt.Errorf("case validation: %w: %s", ErrUnknownHPVStatus, c.HPVStatus)
	}
	if c.TumorLaterality != "" && !c.TumorLaterality.IsValid() {
		return fmt.Errorf("case validation: %w: %s", ErrUnknownLaterality, c.TumorLaterality)
	}
	if c.MarginStatus != "" && !c.MarginStatus.IsValid() {
		return fmt.Errorf("case validation: %w: %s", ErrUnknownMargin, c.MarginStatus)
	}
	if !c.MarginMm.IsEmpty() {
		if _, ok := c.MarginMm.Value(); !ok {
			return fmt.Errorf("case validation: marginMm: %w", ErrInvalidMeasurement)
		}
	}
	if !c.DOI.IsEmpty() {
		if _, ok := c.DOI.Value(); !ok {
			return fmt.Errorf("case validation: doi: %w", ErrInvalidMeasurement)
		}
	}
	return nil
}

// LogFields returns the non-identifying case attributes for structured logs.
func (c CaseData) LogFields() map[string]any {
	return map[string]any{
		"site":    string(c.Site),
		"subsite": string(c.Subsite),
		"t_stage": c.TStage,
		"n_stage": c.NStage,
		"ene":     string(c.ENEStatus),
		"hpv":     string(c.HPVStatus),
		"midline": c.TumorLaterality == TumorMidline,
		"margin":  c.MarginMm.String(),
		"doi":     c.DOI.String(),
		"pni":     string(c.PNI),
		"lvi":     string(c.LVI),
	}
}

// Citation is a supporting literature reference.
type Citation struct {
	Organization string        `json:"organization" yaml:"organization"`
	Title        string        `json:"title" yaml:"title"`
	Year         int           `json:"year" yaml:"year"`
	Evidence     EvidenceGrade `json:"evidence" yaml:"evidence"`
}

// LevelBoundary is the anatomic boundary description of a nodal level.
type LevelBoundary struct {
	Cranial   string `json:"cranial" yaml:"cranial"`
	Caudal    string `json:"caudal" yaml:"caudal"`
	Medial    string `json:"medial" yaml:"medial"`
	Lateral   string `json:"lateral" yaml:"lateral"`
	Anterior  string `json:"anterior" yaml:"anterior"`
	Posterior string `json:"posterior" yaml:"posterior"`
}

// Recommendation is the engine output. The JSON/YAML keys are the exported
// report format and must stay stable.
type Recommendation struct {
	Summary         string                   `json:"summary" yaml:"summary"`
	Explanation     string                   `json:"explanation" yaml:"explanation"`
	StageGroup      string                   `json:"stageGroup" yaml:"stageGroup"`
	GTV             string                   `json:"gtv" yaml:"gtv"`
	CTV             string                   `json:"ctv" yaml:"ctv"`
	PTV             string                   `json:"ptv" yaml:"ptv"`
	ElectiveText    string                   `json:"electiveText" yaml:"electiveText"`
	IncludedLevels  []string                 `json:"includedLevels" yaml:"includedLevels"`
	LevelBoundaries map[string]LevelBoundary `json:"levelBoundaries" yaml:"levelBoundaries"`
	Laterality      Laterality               `json:"laterality" yaml:"laterality"`
	DeepExtensions  []string                 `json:"deepExtensions" yaml:"deepExtensions"`
	RiskLevel       RiskLevel                `json:"riskLevel" yaml:"riskLevel"`
	Citations       []Citation               `json:"citations" yaml:"citations"`
}

// ICRU83 is the baseline reference present on every recommendation.
var ICRU83 = Citation{
	Organization: "ICRU",
	Title:        "ICRU Report 83",
	Year:         2010,
	Evidence:     EvidenceHigh,
}

// NoMatch returns the recommendation reported when no rule branch matches.
func NoMatch() Recommendation {
	return Recommendation{
		IncludedLevels:  []string{},
		LevelBoundaries: map[string]LevelBoundary{},
		Laterality:      Ipsilateral,
		DeepExtensions:  []string{},
		RiskLevel:       RiskLow,
		Citations:       []Citation{ICRU83},
	}
}

// IsNoMatch reports whether r is the no-match sentinel.
func (r Recommendation) IsNoMatch() bool {
	return r.Summary == "" && r.GTV == "" && r.CTV == "" && r.PTV == "" && len(r.IncludedLevels) == 0
}

// Clone returns a deep copy so callers can't alias cached slices or maps.
func (r Recommendation) Clone() Recommendation {
	out := r
	out.IncludedLevels = append([]string{}, r.IncludedLevels...)
	out.DeepExtensions = append([]string{}, r.DeepExtensions...)
	out.Citations = append([]Citation{}, r.Citations...)
	out.LevelBoundaries = make(map[string]LevelBoundary, len(r.LevelBoundaries))
	for k, v := range r.LevelBoundaries {
		out.LevelBoundaries[k] = v
	}
	return out
}

// LogFields returns structured logging fields for the recommendation.
func (r Recommendation) LogFields() map[string]any {
	fields := r.RiskLevel.LogFields()
	fields["laterality"] = string(r.Laterality)
	fields["stage_group"] = r.StageGroup
	fields["included_levels"] = r.IncludedLevels
	fields["deep_extensions"] = len(r.DeepExtensions)
	fields["citations"] = len(r.Citations)
	fields["no_match"] = r.IsNoMatch()
	return fields
}
