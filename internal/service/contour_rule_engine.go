package service

import (
	"fmt"
	"strings"

	"github.com/contourai-mcp-server/internal/atlas"
	"github.com/contourai-mcp-server/internal/domain"
)

// ContourRuleEngine maps case attributes to a contouring recommendation.
// Each (site, subsite) pair selects one branch; inside a branch an ordered
// rule chain is folded over an immutable working state. Evaluate is pure: no
// logging, no validation and no state shared between calls.
type ContourRuleEngine struct {
	atlas    domain.Atlas
	variants map[branchKey]variant
	order    []branchKey
}

type branchKey struct {
	site    domain.Site
	subsite domain.Subsite
}

// variant is one arm of the dispatch. ruleBranch and noMatch are the only
// implementations.
type variant interface {
	recommend(c domain.CaseData, a domain.Atlas) domain.Recommendation
}

// noMatch is the explicit default arm for unsupported site/subsite pairs.
type noMatch struct{}

func (noMatch) recommend(domain.CaseData, domain.Atlas) domain.Recommendation {
	return domain.NoMatch()
}

// Rule is a single condition → effect step of a branch's chain
type Rule struct {
	Code  string
	Name  string
	When  func(c domain.CaseData) bool
	Apply func(c domain.CaseData, s workingState) workingState
}

// RuleInfo describes a rule for listings
type RuleInfo struct {
	Site    domain.Site    `json:"site" yaml:"site"`
	Subsite domain.Subsite `json:"subsite,omitempty" yaml:"subsite,omitempty"`
	Code    string         `json:"code" yaml:"code"`
	Name    string         `json:"name" yaml:"name"`
}

// volumes are the branch-specific free-text parts of a recommendation
type volumes struct {
	Summary      string
	GTV          string
	CTV          string
	PTV          string
	StageGroup   string
	ElectiveNote string
}

// ruleBranch is the rule-chain arm of the dispatch
type ruleBranch struct {
	site      domain.Site
	subsite   domain.Subsite
	base      func(c domain.CaseData) workingState
	rules     []Rule
	describe  func(c domain.CaseData, s workingState) volumes
	citations []domain.Citation
}

// NewContourRuleEngine creates the engine with every supported branch.
// A nil atlas uses the built-in nodal level table.
func NewContourRuleEngine(a domain.Atlas) *ContourRuleEngine {
	if a == nil {
		a = atlas.Default()
	}
	engine := &ContourRuleEngine{
		atlas:    a,
		variants: make(map[branchKey]variant),
	}

	engine.addBranch(oropharynxBranch())
	engine.addBranch(oralCavityBranch())
	engine.addBranch(larynxBranch())
	engine.addBranch(nasopharynxBranch())
	engine.addBranch(breastBranch())
	engine.addBranch(prostateBranch())

	return engine
}

func (e *ContourRuleEngine) addBranch(b *ruleBranch) {
	k := branchKey{site: b.site, subsite: b.subsite}
	e.variants[k] = b
	e.order = append(e.order, k)
}

// Evaluate derives the recommendation for a case. It never fails; unsupported
// site/subsite pairs yield domain.NoMatch().
func (e *ContourRuleEngine) Evaluate(c domain.CaseData) domain.Recommendation {
	return e.dispatch(c).recommend(c, e.atlas)
}

// dispatch selects the branch by exact (site, subsite) match for Head & Neck
// and by site alone otherwise.
func (e *ContourRuleEngine) dispatch(c domain.CaseData) variant {
	k := branchKey{site: c.Site}
	if c.Site == domain.SiteHeadAndNeck {
		k.subsite = c.Subsite
	}
	if v, ok := e.variants[k]; ok {
		return v
	}
	return noMatch{}
}

// Rules lists every rule in branch then chain order.
func (e *ContourRuleEngine) Rules() []RuleInfo {
	var out []RuleInfo
	for _, k := range e.order {
		b := e.variants[k].(*ruleBranch)
		for _, r := range b.rules {
			out = append(out, RuleInfo{Site: b.site, Subsite: b.subsite, Code: r.Code, Name: r.Name})
		}
	}
	return out
}

// run folds the rule chain over the branch's base state.
func (b *ruleBranch) run(c domain.CaseData) workingState {
	s := b.base(c)
	for _, r := range b.rules {
		if r.When(c) {
			s = r.Apply(c, s).noted(r.Code, r.Name)
		}
	}
	return s
}

func (b *ruleBranch) recommend(c domain.CaseData, a domain.Atlas) domain.Recommendation {
	s := b.run(c)
	v := b.describe(c, s)

	levels := append([]string{}, s.levels...)
	citations := append(append([]domain.Citation{}, b.citations...), domain.ICRU83)

	return domain.Recommendation{
		Summary:         v.Summary,
		Explanation:     explain(b, s),
		StageGroup:      v.StageGroup,
		GTV:             v.GTV,
		CTV:             v.CTV,
		PTV:             v.PTV,
		ElectiveText:    electiveText(s.laterality, levels, v.ElectiveNote),
		IncludedLevels:  levels,
		LevelBoundaries: atlas.Annotate(a, levels),
		Laterality:      s.laterality,
		DeepExtensions:  append([]string{}, s.deepExtensions...),
		RiskLevel:       s.risk,
		Citations:       citations,
	}
}

// electiveText composes laterality and levels, falling back to the branch
// note when no level codes were included.
func electiveText(lat domain.Laterality, levels []string, note string) string {
	if len(levels) == 0 {
		return note
	}
	return fmt.Sprintf("%s levels %s", lat, strings.Join(levels, ", "))
}

func explain(b *ruleBranch, s workingState) string {
	name := string(b.site)
	if b.subsite != "" {
		name = string(b.subsite)
	}
	if len(s.applied) == 0 {
		return fmt.Sprintf("%s baseline coverage; no modifier rule applied.", name)
	}
	return fmt.Sprintf("%s rules applied in order: %s.", name, strings.Join(s.applied, "; "))
}

// headNeckSummary renders the summary shared by the Head & Neck branches.
func headNeckSummary(label, stage string, s workingState) string {
	return fmt.Sprintf("%s (%s): %s elective nodal coverage, %s risk.",
		label, stage, strings.ToLower(string(s.laterality)), s.risk)
}
