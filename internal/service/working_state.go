package service

import (
	"fmt"

	"github.com/contourai-mcp-server/internal/domain"
)

// workingState is the accumulator folded through a rule chain. Methods return
// a modified copy and never write through to the receiver's slices.
//
// ctvMargin, laterality and risk are last-write-wins; levels and
// deepExtensions only ever grow.
type workingState struct {
	ctvMargin      string
	laterality     domain.Laterality
	levels         []string
	risk           domain.RiskLevel
	deepExtensions []string
	applied        []string
}

func newState(margin string, lat domain.Laterality, risk domain.RiskLevel, levels ...string) workingState {
	return workingState{
		ctvMargin:      margin,
		laterality:     lat,
		risk:           risk,
		levels:         dedupe(levels),
		deepExtensions: []string{},
		applied:        []string{},
	}
}

func (s workingState) withMargin(margin string) workingState {
	s.ctvMargin = margin
	return s
}

func (s workingState) withLaterality(lat domain.Laterality) workingState {
	s.laterality = lat
	return s
}

// setRisk overwrites the tier.
func (s workingState) setRisk(r domain.RiskLevel) workingState {
	s.risk = r
	return s
}

// raiseRisk applies an "at least" floor.
func (s workingState) raiseRisk(floor domain.RiskLevel) workingState {
	s.risk = s.risk.AtLeast(floor)
	return s
}

// withLevels appends level codes not yet included, keeping insertion order.
func (s workingState) withLevels(codes ...string) workingState {
	s.levels = appendUnique(s.levels, codes...)
	return s
}

func (s workingState) withDeepExtension(advisories ...string) workingState {
	s.deepExtensions = appendUnique(s.deepExtensions, advisories...)
	return s
}

func (s workingState) noted(code, name string) workingState {
	out := make([]string, len(s.applied), len(s.applied)+1)
	copy(out, s.applied)
	s.applied = append(out, fmt.Sprintf("%s (%s)", code, name))
	return s
}

// appendUnique returns a fresh slice holding base followed by the items of
// extra that are not already present.
func appendUnique(base []string, extra ...string) []string {
	out := make([]string, len(base), len(base)+len(extra))
	copy(out, base)
	for _, item := range extra {
		if !contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

func dedupe(items []string) []string {
	return appendUnique(nil, items...)
}

func contains(items []string, item string) bool {
	for _, v := range items {
		if v == item {
			return true
		}
	}
	return false
}
