package service

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contourai-mcp-server/internal/domain"
)

func oropharynxCase() domain.CaseData {
	return domain.CaseData{
		Site:            domain.SiteHeadAndNeck,
		Subsite:         domain.SubsiteOropharynx,
		TStage:          "T1",
		NStage:          "N0",
		ENEStatus:       domain.ENENotPresent,
		HPVStatus:       domain.HPVPositive,
		TumorLaterality: domain.TumorLateralized,
	}
}

func TestContourRuleEngine_Scenarios(t *testing.T) {
	engine := NewContourRuleEngine(nil)

	t.Run("HPV-positive lateralized T1N0 stays ipsilateral", func(t *testing.T) {
		rec := engine.Evaluate(oropharynxCase())

		assert.Equal(t, domain.Ipsilateral, rec.Laterality)
		assert.Equal(t, domain.RiskLow, rec.RiskLevel)
		assert.Equal(t, []string{"IIa", "IIb", "III", "IV"}, rec.IncludedLevels)
		assert.NotContains(t, rec.IncludedLevels, "RPN")
		assert.Equal(t, "Stage I", rec.StageGroup)
	})

	t.Run("N2b goes bilateral with retropharyngeal nodes", func(t *testing.T) {
		c := oropharynxCase()
		c.NStage = "N2b"
		rec := engine.Evaluate(c)

		assert.Equal(t, domain.Bilateral, rec.Laterality)
		assert.True(t, rec.RiskLevel.Rank() >= domain.RiskIntermediate.Rank())
		assert.Contains(t, rec.IncludedLevels, "RPN")
		assert.Contains(t, rec.LevelBoundaries, "RPN")
	})

	t.Run("macroscopic ENE widens margin to 10 mm", func(t *testing.T) {
		rec := engine.Evaluate(domain.CaseData{
			Site:      domain.SiteHeadAndNeck,
			Subsite:   domain.SubsiteOropharynx,
			ENEStatus: domain.ENEMacroscopic,
			TStage:    "T2",
			NStage:    "N1",
		})

		assert.Contains(t, rec.CTV, "10 mm")
		assert.Equal(t, domain.RiskHigh, rec.RiskLevel)
		assert.Equal(t, domain.Bilateral, rec.Laterality)
	})

	t.Run("breast close margin", func(t *testing.T) {
		rec := engine.Evaluate(domain.CaseData{Site: domain.SiteBreast, MarginMm: domain.NewMeasurement(1)})

		assert.Contains(t, strings.ToLower(rec.Summary), "close/positive margin")
		assert.Contains(t, rec.CTV, "15 mm")
		assert.Equal(t, domain.RiskHigh, rec.RiskLevel)
	})

	t.Run("breast clear margin", func(t *testing.T) {
		rec := engine.Evaluate(domain.CaseData{Site: domain.SiteBreast, MarginMm: domain.NewMeasurement(10)})

		assert.Equal(t, "Standard adjuvant whole breast irradiation.", rec.Summary)
		assert.Contains(t, rec.CTV, "5 mm")
		assert.NotContains(t, rec.CTV, "15 mm")
		assert.Equal(t, domain.RiskLow, rec.RiskLevel)
	})

	t.Run("prostate T3a includes seminal vesicles", func(t *testing.T) {
		rec := engine.Evaluate(domain.CaseData{Site: domain.SiteProstate, TStage: "T3a"})

		assert.Contains(t, rec.Summary, "seminal vesicle")
		assert.Contains(t, rec.GTV, "seminal vesicles")
		assert.Equal(t, domain.RiskHigh, rec.RiskLevel)
	})

	t.Run("unknown site yields the sentinel", func(t *testing.T) {
		rec := engine.Evaluate(domain.CaseData{Site: "Unknown Site"})

		assert.Empty(t, rec.Summary)
		assert.Empty(t, rec.Explanation)
		assert.Empty(t, rec.GTV)
		assert.Empty(t, rec.CTV)
		assert.Empty(t, rec.PTV)
		assert.Empty(t, rec.ElectiveText)
		assert.NotNil(t, rec.IncludedLevels)
		assert.Empty(t, rec.IncludedLevels)
		assert.Len(t, rec.Citations, 1)
		assert.True(t, rec.IsNoMatch())
	})
}

func TestContourRuleEngine_Deterministic(t *testing.T) {
	engine := NewContourRuleEngine(nil)
	c := oropharynxCase()
	c.TStage = "T4a"
	c.NStage = "N3"
	c.ENEStatus = domain.ENEMicroscopic
	c.OropharynxSubsite = domain.OropharynxTonsil

	first := engine.Evaluate(c)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, engine.Evaluate(c)); diff != "" {
			t.Fatalf("Evaluate() not deterministic (-first +again):\n%s", diff)
		}
	}
	if diff := cmp.Diff(first, NewContourRuleEngine(nil).Evaluate(c)); diff != "" {
		t.Fatalf("separate engines disagree (-first +other):\n%s", diff)
	}
}

func TestContourRuleEngine_Totality(t *testing.T) {
	engine := NewContourRuleEngine(nil)

	cases := map[string]domain.CaseData{
		"empty":                {},
		"head and neck only":   {Site: domain.SiteHeadAndNeck},
		"unsupported subsite":  {Site: domain.SiteHeadAndNeck, Subsite: "Hypopharynx"},
		"subsite without site": {Subsite: domain.SubsiteOropharynx},
		"garbage stages":       {Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteOralCavity, TStage: "??", NStage: "xyz"},
		"non-numeric margin":   {Site: domain.SiteBreast, MarginMm: domain.ParseMeasurement("abc")},
		"empty margin":         {Site: domain.SiteBreast},
		"prostate":             {Site: domain.SiteProstate},
		"nasopharynx":          {Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteNasopharynx},
		"larynx":               {Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteLarynx},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			var rec domain.Recommendation
			require.NotPanics(t, func() { rec = engine.Evaluate(c) })

			assert.NotNil(t, rec.IncludedLevels)
			assert.NotNil(t, rec.DeepExtensions)
			assert.NotNil(t, rec.LevelBoundaries)
			require.NotEmpty(t, rec.Citations)
			assert.Equal(t, domain.ICRU83, rec.Citations[len(rec.Citations)-1])
		})
	}
}

func TestContourRuleEngine_SentinelForUnmatchedHeadAndNeck(t *testing.T) {
	engine := NewContourRuleEngine(nil)

	rec := engine.Evaluate(domain.CaseData{Site: domain.SiteHeadAndNeck, Subsite: "Hypopharynx", NStage: "N2"})
	assert.Equal(t, domain.NoMatch(), rec)

	// Breast ignores subsite.
	rec = engine.Evaluate(domain.CaseData{Site: domain.SiteBreast, Subsite: domain.SubsiteOropharynx, MarginMm: domain.NewMeasurement(1)})
	assert.Contains(t, rec.CTV, "15 mm")
}

func TestContourRuleEngine_NoDuplicateLevels(t *testing.T) {
	engine := NewContourRuleEngine(nil)

	// N2, N3 and macroscopic ENE all add RPN.
	c := oropharynxCase()
	c.NStage = "N2c N3"
	c.ENEStatus = domain.ENEMacroscopic
	rec := engine.Evaluate(c)

	seen := map[string]bool{}
	for _, level := range rec.IncludedLevels {
		assert.False(t, seen[level], "duplicate level %s", level)
		seen[level] = true
	}
	assert.Equal(t, []string{"IIa", "IIb", "III", "IV", "RPN", "V"}, rec.IncludedLevels)

	oc := engine.Evaluate(domain.CaseData{
		Site:      domain.SiteHeadAndNeck,
		Subsite:   domain.SubsiteOralCavity,
		NStage:    "N2b",
		ENEStatus: domain.ENEMicroscopic,
	})
	assert.Equal(t, []string{"Ia", "Ib", "IIa", "IIb", "III", "IV"}, oc.IncludedLevels)
}

func TestContourRuleEngine_ENEMonotonicRisk(t *testing.T) {
	engine := NewContourRuleEngine(nil)
	sequence := []domain.ENEStatus{domain.ENENotPresent, domain.ENEMicroscopic, domain.ENEMacroscopic}

	bases := map[string]domain.CaseData{
		"de-escalation candidate": oropharynxCase(),
		"HPV-negative N1":         {Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteOropharynx, HPVStatus: domain.HPVNegative, NStage: "N1"},
		"T4 N3":                   {Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteOropharynx, TStage: "T4", NStage: "N3"},
		"oral cavity":             {Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteOralCavity, NStage: "N1"},
		"larynx":                  {Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteLarynx, NStage: "N1"},
		"nasopharynx":             {Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteNasopharynx, NStage: "N1"},
	}

	for name, base := range bases {
		t.Run(name, func(t *testing.T) {
			previous := -1
			for _, ene := range sequence {
				c := base
				c.ENEStatus = ene
				rank := engine.Evaluate(c).RiskLevel.Rank()
				assert.GreaterOrEqual(t, rank, previous, "risk dropped at ENE %q", ene)
				previous = rank
			}
		})
	}
}

func TestContourRuleEngine_DeepExtensions(t *testing.T) {
	engine := NewContourRuleEngine(nil)

	c := oropharynxCase()
	c.TStage = "T4a"
	c.OropharynxSubsite = domain.OropharynxBaseOfTongue
	rec := engine.Evaluate(c)

	require.Len(t, rec.DeepExtensions, 2)
	assert.Equal(t, oropharynxDeepExtension[domain.OropharynxBaseOfTongue], rec.DeepExtensions[0])
	assert.Equal(t, oropharynxT4Extension, rec.DeepExtensions[1])
	assert.Equal(t, domain.RiskHigh, rec.RiskLevel)
	assert.Equal(t, domain.Bilateral, rec.Laterality)

	c.OropharynxSubsite = ""
	c.TStage = "T3"
	rec = engine.Evaluate(c)
	assert.Equal(t, []string{oropharynxDefaultExtension}, rec.DeepExtensions)
}

func TestContourRuleEngine_OralCavity(t *testing.T) {
	engine := NewContourRuleEngine(nil)
	base := domain.CaseData{Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteOralCavity, TStage: "T1", NStage: "N0"}

	tests := []struct {
		name       string
		mutate     func(c *domain.CaseData)
		risk       domain.RiskLevel
		laterality domain.Laterality
		ctv        string
	}{
		{"baseline", func(*domain.CaseData) {}, domain.RiskLow, domain.Ipsilateral, "5 mm"},
		{"close margin", func(c *domain.CaseData) { c.MarginStatus = domain.MarginClose }, domain.RiskIntermediate, domain.Ipsilateral, "5 mm"},
		{"positive margin", func(c *domain.CaseData) { c.MarginStatus = domain.MarginPositive }, domain.RiskIntermediate, domain.Ipsilateral, "10 mm"},
		{"deep invasion", func(c *domain.CaseData) { c.DOI = domain.NewMeasurement(12) }, domain.RiskIntermediate, domain.Ipsilateral, "5 mm"},
		{"shallow invasion", func(c *domain.CaseData) { c.DOI = domain.NewMeasurement(4) }, domain.RiskLow, domain.Ipsilateral, "5 mm"},
		{"non-numeric invasion", func(c *domain.CaseData) { c.DOI = domain.ParseMeasurement("deep") }, domain.RiskLow, domain.Ipsilateral, "5 mm"},
		{"perineural invasion", func(c *domain.CaseData) { c.PNI = domain.Yes }, domain.RiskIntermediate, domain.Ipsilateral, "5 mm"},
		{"lymphovascular invasion", func(c *domain.CaseData) { c.LVI = domain.Yes }, domain.RiskIntermediate, domain.Ipsilateral, "5 mm"},
		{"midline", func(c *domain.CaseData) { c.TumorLaterality = domain.TumorMidline }, domain.RiskLow, domain.Bilateral, "5 mm"},
		{"N2", func(c *domain.CaseData) { c.NStage = "N2a" }, domain.RiskHigh, domain.Bilateral, "5 mm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			rec := engine.Evaluate(c)

			assert.Equal(t, tt.risk, rec.RiskLevel)
			assert.Equal(t, tt.laterality, rec.Laterality)
			assert.Contains(t, rec.CTV, tt.ctv)
		})
	}

	assert.Equal(t, "Stage I", engine.Evaluate(base).StageGroup)
}

func TestContourRuleEngine_LarynxAndNasopharynx(t *testing.T) {
	engine := NewContourRuleEngine(nil)

	larynx := engine.Evaluate(domain.CaseData{Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteLarynx, TStage: "T4a", NStage: "N1"})
	assert.Equal(t, domain.RiskHigh, larynx.RiskLevel)
	assert.Equal(t, domain.Bilateral, larynx.Laterality)
	assert.Equal(t, []string{"IIa", "IIb", "III", "IV", "VIa"}, larynx.IncludedLevels)
	assert.Len(t, larynx.DeepExtensions, 2)

	npc := engine.Evaluate(domain.CaseData{Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteNasopharynx, TStage: "T1", NStage: "N0"})
	assert.Equal(t, domain.Bilateral, npc.Laterality)
	assert.Equal(t, domain.RiskIntermediate, npc.RiskLevel)
	assert.Equal(t, []string{"RPN", "IIa", "IIb", "III", "V"}, npc.IncludedLevels)
	assert.Equal(t, npcConsensus, npc.Citations[0])

	npc = engine.Evaluate(domain.CaseData{Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteNasopharynx, NStage: "N3"})
	assert.Equal(t, domain.RiskHigh, npc.RiskLevel)
	assert.Contains(t, npc.IncludedLevels, "IV")
}

func TestContourRuleEngine_LarynxNodalAndENE(t *testing.T) {
	engine := NewContourRuleEngine(nil)
	larynx := func(n string, ene domain.ENEStatus) domain.CaseData {
		return domain.CaseData{Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteLarynx, TStage: "T2", NStage: n, ENEStatus: ene}
	}

	tests := []struct {
		name       string
		c          domain.CaseData
		laterality domain.Laterality
		risk       domain.RiskLevel
		margin     string
	}{
		{"N0", larynx("N0", ""), domain.Ipsilateral, domain.RiskLow, "5 mm"},
		{"N1 stays ipsilateral", larynx("N1", ""), domain.Ipsilateral, domain.RiskLow, "5 mm"},
		{"N2b goes bilateral", larynx("N2b", ""), domain.Bilateral, domain.RiskIntermediate, "5 mm"},
		{"N3 goes bilateral", larynx("N3", ""), domain.Bilateral, domain.RiskIntermediate, "5 mm"},
		{"microscopic ENE is high risk", larynx("N1", domain.ENEMicroscopic), domain.Ipsilateral, domain.RiskHigh, "7–10 mm"},
		{"macroscopic ENE is high risk", larynx("N2a", domain.ENEMacroscopic), domain.Bilateral, domain.RiskHigh, "10 mm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := engine.Evaluate(tt.c)
			assert.Equal(t, tt.laterality, rec.Laterality)
			assert.Equal(t, tt.risk, rec.RiskLevel)
			assert.Contains(t, rec.CTV, tt.margin)
			assert.Equal(t, []string{"IIa", "IIb", "III", "IV"}, rec.IncludedLevels)
		})
	}
}

func TestContourRuleEngine_NasopharynxN2(t *testing.T) {
	rec := NewContourRuleEngine(nil).Evaluate(domain.CaseData{Site: domain.SiteHeadAndNeck, Subsite: domain.SubsiteNasopharynx, TStage: "T1", NStage: "N2"})

	assert.Equal(t, domain.RiskHigh, rec.RiskLevel)
	assert.Equal(t, []string{"RPN", "IIa", "IIb", "III", "V", "IV"}, rec.IncludedLevels)
	assert.Equal(t, domain.Bilateral, rec.Laterality)
}

func TestContourRuleEngine_Explanation(t *testing.T) {
	engine := NewContourRuleEngine(nil)

	rec := engine.Evaluate(domain.CaseData{Site: domain.SiteProstate, TStage: "T2"})
	assert.Equal(t, "Prostate baseline coverage; no modifier rule applied.", rec.Explanation)

	c := oropharynxCase()
	c.NStage = "N2b"
	rec = engine.Evaluate(c)
	assert.True(t, strings.HasPrefix(rec.Explanation, "Oropharynx rules applied in order: OPX-N2"))
	assert.Equal(t, "Bilateral levels IIa, IIb, III, IV, RPN", rec.ElectiveText)

	breast := engine.Evaluate(domain.CaseData{Site: domain.SiteBreast, MarginMm: domain.NewMeasurement(3)})
	assert.Equal(t, "Regional nodes if N positive.", breast.ElectiveText)
}

func TestContourRuleEngine_BranchIsolation(t *testing.T) {
	// Each branch's chain runs on its own base state.
	b := breastBranch()
	s := b.run(domain.CaseData{Site: domain.SiteBreast, NStage: "N1", MarginMm: domain.NewMeasurement(2)})

	assert.Equal(t, "15 mm", s.ctvMargin)
	assert.Equal(t, domain.RiskHigh, s.risk)
	assert.Equal(t, []string{"Axilla I", "Axilla II", "Axilla III", "SCV"}, s.levels)
	assert.Len(t, s.applied, 2)

	p := prostateBranch().run(domain.CaseData{Site: domain.SiteProstate, TStage: "T2", NStage: "N1"})
	assert.Equal(t, domain.Bilateral, p.laterality)
	assert.Equal(t, domain.RiskHigh, p.risk)
}

func TestContourRuleEngine_Rules(t *testing.T) {
	rules := NewContourRuleEngine(nil).Rules()
	require.NotEmpty(t, rules)

	codes := map[string]bool{}
	for _, r := range rules {
		assert.False(t, codes[r.Code], "duplicate rule code %s", r.Code)
		codes[r.Code] = true
		assert.NotEmpty(t, r.Name)
	}
	assert.Equal(t, "OPX-DEESC", rules[0].Code)
	assert.True(t, codes["PR-T3"])
	assert.True(t, codes["BR-CLOSE-MARGIN"])
}
