package domain

import (
	"context"
)

// RecommendationEngine derives a contouring recommendation from case attributes.
// Implementations must be pure and total: every input yields a populated
// Recommendation and nothing is shared between calls.
type RecommendationEngine interface {
	Evaluate(c CaseData) Recommendation
}

// Atlas is the read-only nodal level boundary table
type Atlas interface {
	Lookup(code string) (LevelBoundary, bool)
	Codes() []string
}

// RecommendationService is the collaborator-facing API used by the CLI and MCP tools
type RecommendationService interface {
	Recommend(ctx context.Context, c CaseData) (Recommendation, error)
	RecommendBatch(ctx context.Context, cases []CaseData) ([]BatchResult, error)
	LookupLevel(code string) (LevelBoundary, bool)
	NodalLevels() []string
	StageGroup(c CaseData) string
}

// BatchResult pairs a case with its recommendation or validation error
type BatchResult struct {
	Index          int             `json:"index" yaml:"index"`
	Case           CaseData        `json:"case" yaml:"case"`
	Recommendation *Recommendation `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Error          string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetLoggingConfig() *LoggingConfig
	GetEngineConfig() *EngineConfig
	GetExportConfig() *ExportConfig
	GetMCPConfig() *MCPConfig
	Reload() error
	Validate() error
}
