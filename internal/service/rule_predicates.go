package service

import (
	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/staging"
)

// Shared rule conditions. Stage tests use substring containment; absent
// fields never satisfy a condition.

func advancedT(c domain.CaseData) bool {
	return staging.ContainsAny(c.TStage, "T3", "T4")
}

func t4(c domain.CaseData) bool {
	return staging.ContainsToken(c.TStage, "T4")
}

func earlyN(c domain.CaseData) bool {
	return staging.ContainsAny(c.NStage, "N0", "N1") && !advancedN(c)
}

func advancedN(c domain.CaseData) bool {
	return staging.ContainsAny(c.NStage, "N2", "N3")
}

func nodePositive(c domain.CaseData) bool {
	return staging.ContainsAny(c.NStage, "N1", "N2", "N3")
}

func midline(c domain.CaseData) bool {
	return c.TumorLaterality == domain.TumorMidline
}

func eneMicroscopic(c domain.CaseData) bool {
	return c.ENEStatus == domain.ENEMicroscopic
}

func eneMacroscopic(c domain.CaseData) bool {
	return c.ENEStatus.IsMacroscopic()
}

func enePresent(c domain.CaseData) bool {
	return c.ENEStatus.IsPresent()
}
