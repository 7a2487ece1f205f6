// Package staging derives AJCC 8th edition stage groups for head and neck
// primaries from free-text clinical T and N tokens.
package staging

import (
	"strings"

	"github.com/contourai-mcp-server/internal/domain"
)

// TCategory is a normalised primary tumor category.
type TCategory string

const (
	T0  TCategory = "T0"
	Tis TCategory = "Tis"
	T1  TCategory = "T1"
	T2  TCategory = "T2"
	T3  TCategory = "T3"
	// T4 is a T4 token without the a/b suffix.
	T4  TCategory = "T4"
	T4a TCategory = "T4a"
	T4b TCategory = "T4b"
)

// NCategory is a normalised regional node category. Subcategories
// (N2a/N2b/N2c, N3a/N3b) collapse onto their parent.
type NCategory string

const (
	N0 NCategory = "N0"
	N1 NCategory = "N1"
	N2 NCategory = "N2"
	N3 NCategory = "N3"
)

// Stage group labels
const (
	Stage0   = "Stage 0"
	StageI   = "Stage I"
	StageII  = "Stage II"
	StageIII = "Stage III"
	StageIVA = "Stage IVA"
	StageIVB = "Stage IVB"
)

type key struct {
	t TCategory
	n NCategory
}

var (
	// p16-positive oropharynx, clinical staging.
	hpvPositiveTable = map[key]string{}
	// p16-negative oropharynx, oral cavity and larynx share the same grouping.
	squamousTable    = map[key]string{}
	nasopharynxTable = map[key]string{}
)

func init() {
	fill(hpvPositiveTable, []TCategory{T0, T1, T2}, []NCategory{N1}, StageI)
	fill(hpvPositiveTable, []TCategory{T1, T2}, []NCategory{N0}, StageI)
	fill(hpvPositiveTable, []TCategory{T0, T1, T2}, []NCategory{N2}, StageII)
	fill(hpvPositiveTable, []TCategory{T3}, []NCategory{N0, N1, N2}, StageII)
	fill(hpvPositiveTable, []TCategory{T0, T1, T2, T3}, []NCategory{N3}, StageIII)
	fill(hpvPositiveTable, []TCategory{T4, T4a, T4b}, []NCategory{N0, N1, N2, N3}, StageIII)

	fill(squamousTable, []TCategory{Tis}, []NCategory{N0}, Stage0)
	fill(squamousTable, []TCategory{T1}, []NCategory{N0}, StageI)
	fill(squamousTable, []TCategory{T2}, []NCategory{N0}, StageII)
	fill(squamousTable, []TCategory{T3}, []NCategory{N0}, StageIII)
	fill(squamousTable, []TCategory{T1, T2, T3}, []NCategory{N1}, StageIII)
	fill(squamousTable, []TCategory{T4a}, []NCategory{N0, N1}, StageIVA)
	fill(squamousTable, []TCategory{T1, T2, T3, T4a}, []NCategory{N2}, StageIVA)
	fill(squamousTable, []TCategory{T1, T2, T3, T4, T4a, T4b}, []NCategory{N3}, StageIVB)
	fill(squamousTable, []TCategory{T4b}, []NCategory{N0, N1, N2}, StageIVB)

	fill(nasopharynxTable, []TCategory{Tis}, []NCategory{N0}, Stage0)
	fill(nasopharynxTable, []TCategory{T1}, []NCategory{N0}, StageI)
	fill(nasopharynxTable, []TCategory{T0, T1}, []NCategory{N1}, StageII)
	fill(nasopharynxTable, []TCategory{T2}, []NCategory{N0, N1}, StageII)
	fill(nasopharynxTable, []TCategory{T0, T1, T2}, []NCategory{N2}, StageIII)
	fill(nasopharynxTable, []TCategory{T3}, []NCategory{N0, N1, N2}, StageIII)
	fill(nasopharynxTable, []TCategory{T4, T4a, T4b}, []NCategory{N0, N1, N2, N3}, StageIVA)
	fill(nasopharynxTable, []TCategory{T0, T1, T2, T3}, []NCategory{N3}, StageIVA)
}

func fill(table map[key]string, ts []TCategory, ns []NCategory, group string) {
	for _, t := range ts {
		for _, n := range ns {
			table[key{t, n}] = group
		}
	}
}

// normalize drops whitespace and the c/p/y/r staging prefixes ("cT2", "ypN1").
func normalize(token string) string {
	s := strings.TrimSpace(token)
	for len(s) > 0 && strings.ContainsRune("cpyr", rune(s[0])) {
		s = s[1:]
	}
	return strings.ToUpper(s)
}

// ParseT extracts the T category from a clinical token. The second result is
// false when the token carries no recognisable category (including TX).
func ParseT(token string) (TCategory, bool) {
	s := normalize(token)
	switch {
	case strings.HasPrefix(s, "TIS"):
		return Tis, true
	case strings.HasPrefix(s, "T4A"):
		return T4a, true
	case strings.HasPrefix(s, "T4B"):
		return T4b, true
	case strings.HasPrefix(s, "T4"):
		return T4, true
	case strings.HasPrefix(s, "T3"):
		return T3, true
	case strings.HasPrefix(s, "T2"):
		return T2, true
	case strings.HasPrefix(s, "T1"):
		return T1, true
	case strings.HasPrefix(s, "T0"):
		return T0, true
	}
	return "", false
}

// ParseN extracts the N category from a clinical token.
func ParseN(token string) (NCategory, bool) {
	s := normalize(token)
	switch {
	case strings.HasPrefix(s, "N3"):
		return N3, true
	case strings.HasPrefix(s, "N2"):
		return N2, true
	case strings.HasPrefix(s, "N1"):
		return N1, true
	case strings.HasPrefix(s, "N0"):
		return N0, true
	}
	return "", false
}

// OropharynxStageGroup returns the AJCC stage group for an oropharyngeal
// primary. HPV-positive disease uses the p16-positive clinical table; negative
// or unknown status falls back to the p16-negative table.
func OropharynxStageGroup(tStage, nStage string, hpv domain.HPVStatus) string {
	if hpv == domain.HPVPositive {
		return lookup(hpvPositiveTable, tStage, nStage)
	}
	return lookup(squamousTable, tStage, nStage)
}

// OralCavityStageGroup returns the AJCC stage group for an oral cavity primary.
func OralCavityStageGroup(tStage, nStage string) string {
	return lookup(squamousTable, tStage, nStage)
}

// LarynxStageGroup returns the AJCC stage group for a laryngeal primary.
func LarynxStageGroup(tStage, nStage string) string {
	return lookup(squamousTable, tStage, nStage)
}

// NasopharynxStageGroup returns the AJCC stage group for a nasopharyngeal
// primary.
func NasopharynxStageGroup(tStage, nStage string) string {
	return lookup(nasopharynxTable, tStage, nStage)
}

func lookup(table map[key]string, tStage, nStage string) string {
	t, ok := ParseT(tStage)
	if !ok {
		return domain.StageUncertain
	}
	n, ok := ParseN(nStage)
	if !ok {
		return domain.StageUncertain
	}
	if group, ok := table[key{t, n}]; ok {
		return group
	}
	return domain.StageUncertain
}

// ContainsToken reports whether a stage token contains the given fragment.
// Matching is plain substring containment, so "N2" matches "N2b" and "N2c"
// (and also a malformed "N20").
func ContainsToken(stage, fragment string) bool {
	return fragment != "" && strings.Contains(stage, fragment)
}

// ContainsAny reports whether the stage token contains any fragment.
func ContainsAny(stage string, fragments ...string) bool {
	for _, f := range fragments {
		if ContainsToken(stage, f) {
			return true
		}
	}
	return false
}
