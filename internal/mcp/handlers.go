package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/export"
)

// CaseParams are the case attributes accepted by the tools. Measurements are
// plain numbers here; CaseData keeps the form's text representation.
type CaseParams struct {
	Site              string   `json:"site" jsonschema:"primary site: Head & Neck, Breast or Prostate"`
	Subsite           string   `json:"subsite,omitempty" jsonschema:"Head & Neck subsite: Oropharynx, Oral Cavity, Larynx or Nasopharynx"`
	OropharynxSubsite string   `json:"oropharynxSubsite,omitempty" jsonschema:"Base of Tongue, Tonsil, Soft Palate or Posterior Pharyngeal Wall"`
	TStage            string   `json:"tStage,omitempty" jsonschema:"clinical T stage, e.g. T2 or cT4a"`
	NStage            string   `json:"nStage,omitempty" jsonschema:"clinical N stage, e.g. N1 or N2b"`
	ENEStatus         string   `json:"eneStatus,omitempty" jsonschema:"Not Present, Microscopic, Macroscopic or Present (unspecified)"`
	HPVStatus         string   `json:"hpvStatus,omitempty" jsonschema:"Positive, Negative or Unknown"`
	TumorLaterality   string   `json:"tumorLaterality,omitempty" jsonschema:"Lateralized or Midline / Crossing midline"`
	MarginMm          *float64 `json:"marginMm,omitempty" jsonschema:"closest resection margin in mm"`
	MarginStatus      string   `json:"marginStatus,omitempty" jsonschema:"clear, Close (<5mm) or Positive"`
	DOI               *float64 `json:"doi,omitempty" jsonschema:"depth of invasion in mm (oral cavity)"`
	PNI               string   `json:"pni,omitempty" jsonschema:"perineural invasion: Yes or No"`
	LVI               string   `json:"lvi,omitempty" jsonschema:"lymphovascular invasion: Yes or No"`
}

// CaseData converts the tool parameters to the engine's case type.
func (p CaseParams) CaseData() domain.CaseData {
	c := domain.CaseData{
		Site:              domain.Site(p.Site),
		Subsite:           domain.Subsite(p.Subsite),
		OropharynxSubsite: domain.OropharynxSubsite(p.OropharynxSubsite),
		TStage:            p.TStage,
		NStage:            p.NStage,
		ENEStatus:         domain.ENEStatus(p.ENEStatus),
		HPVStatus:         domain.HPVStatus(p.HPVStatus),
		TumorLaterality:   domain.TumorLaterality(p.TumorLaterality),
		MarginStatus:      domain.MarginStatus(p.MarginStatus),
		PNI:               domain.YesNo(p.PNI),
		LVI:               domain.YesNo(p.LVI),
	}
	if p.MarginMm != nil {
		c.MarginMm = domain.NewMeasurement(*p.MarginMm)
	}
	if p.DOI != nil {
		c.DOI = domain.NewMeasurement(*p.DOI)
	}
	return c
}

// BatchParams defines parameters for batch_recommend_contours
type BatchParams struct {
	Cases []CaseParams `json:"cases" jsonschema:"cases to evaluate"`
}

// BatchSummary is the structured result of batch_recommend_contours
type BatchSummary struct {
	Total   int                  `json:"total" yaml:"total"`
	Failed  int                  `json:"failed" yaml:"failed"`
	Results []domain.BatchResult `json:"results" yaml:"results"`
}

// LookupLevelParams defines parameters for lookup_nodal_level
type LookupLevelParams struct {
	Level string `json:"level" jsonschema:"nodal level code, e.g. IIa"`
}

// LookupLevelResult is the structured result of lookup_nodal_level
type LookupLevelResult struct {
	Level      string               `json:"level" yaml:"level"`
	Boundaries domain.LevelBoundary `json:"boundaries" yaml:"boundaries"`
}

// ListLevelsParams takes no arguments
type ListLevelsParams struct{}

// ListLevelsResult is the structured result of list_nodal_levels
type ListLevelsResult struct {
	Levels []string `json:"levels" yaml:"levels"`
}

// StageGroupResult is the structured result of derive_stage_group
type StageGroupResult struct {
	Site       string `json:"site" yaml:"site"`
	Subsite    string `json:"subsite,omitempty" yaml:"subsite,omitempty"`
	TStage     string `json:"tStage" yaml:"tStage"`
	NStage     string `json:"nStage" yaml:"nStage"`
	StageGroup string `json:"stageGroup" yaml:"stageGroup"`
}

// handleRecommendContours handles the recommend_contours tool invocation
func (s *Server) handleRecommendContours(ctx context.Context, req *mcp.CallToolRequest, params CaseParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "recommend_contours").Info("Tool invoked")

	c := params.CaseData()
	rec, err := s.service.Recommend(ctx, c)
	if err != nil {
		return s.createErrorResult(domain.ErrValidation, "Invalid case", err), nil, nil
	}

	report := export.NewReport(c, rec)
	var buf bytes.Buffer
	if err := export.Encode(&buf, report, export.FormatYAML); err != nil {
		return s.createErrorResult(domain.ErrExport, "Failed to render recommendation", err), nil, nil
	}

	return textResult(buf.String()), report, nil
}

// handleBatchRecommend handles the batch_recommend_contours tool invocation
func (s *Server) handleBatchRecommend(ctx context.Context, req *mcp.CallToolRequest, params BatchParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{
		"tool":  "batch_recommend_contours",
		"cases": len(params.Cases),
	}).Info("Tool invoked")

	if len(params.Cases) == 0 {
		return s.createErrorResult(domain.ErrInvalidInput, "Missing required parameter", fmt.Errorf("cases must not be empty")), nil, nil
	}

	cases := make([]domain.CaseData, len(params.Cases))
	for i, p := range params.Cases {
		cases[i] = p.CaseData()
	}

	results, err := s.service.RecommendBatch(ctx, cases)
	if err != nil {
		return s.createErrorResult(domain.ErrInternalServer, "Batch evaluation failed", err), nil, nil
	}

	summary := BatchSummary{Total: len(results), Results: results}
	for _, r := range results {
		if r.Error != "" {
			summary.Failed++
		}
	}

	return s.yamlResult(summary)
}

// handleLookupNodalLevel handles the lookup_nodal_level tool invocation
func (s *Server) handleLookupNodalLevel(ctx context.Context, req *mcp.CallToolRequest, params LookupLevelParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "lookup_nodal_level").Info("Tool invoked")

	code := strings.TrimSpace(params.Level)
	if code == "" {
		return s.createErrorResult(domain.ErrInvalidInput, "Missing required parameter", fmt.Errorf("level is required")), nil, nil
	}

	boundary, ok := s.service.LookupLevel(code)
	if !ok {
		return s.createErrorResult(domain.ErrUnknownLevel, "Unknown nodal level",
			fmt.Errorf("%q is not in the atlas; known levels: %s", code, strings.Join(s.service.NodalLevels(), ", "))), nil, nil
	}

	return s.yamlResult(LookupLevelResult{Level: code, Boundaries: boundary})
}

// handleListNodalLevels handles the list_nodal_levels tool invocation
func (s *Server) handleListNodalLevels(ctx context.Context, req *mcp.CallToolRequest, params ListLevelsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "list_nodal_levels").Info("Tool invoked")

	return s.yamlResult(ListLevelsResult{Levels: s.service.NodalLevels()})
}

// handleDeriveStageGroup handles the derive_stage_group tool invocation
func (s *Server) handleDeriveStageGroup(ctx context.Context, req *mcp.CallToolRequest, params CaseParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "derive_stage_group").Info("Tool invoked")

	c := params.CaseData()
	return s.yamlResult(StageGroupResult{
		Site:       params.Site,
		Subsite:    params.Subsite,
		TStage:     params.TStage,
		NStage:     params.NStage,
		StageGroup: s.service.StageGroup(c),
	})
}

func (s *Server) yamlResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return s.createErrorResult(domain.ErrInternalServer, "Failed to render result", err), nil, nil
	}
	return textResult(string(data)), v, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(code, message string, err error) *mcp.CallToolResult {
	toolErr := domain.NewToolError(code, message, "", uuid.New().String())
	if err != nil {
		toolErr.Details = err.Error()
	}

	s.logger.WithFields(logrus.Fields{
		"code":       toolErr.Code,
		"request_id": toolErr.RequestID,
	}).WithError(err).Warn("Tool call failed")

	errorText := fmt.Sprintf("Error: %s", toolErr.Error())
	if toolErr.Details != "" {
		errorText += fmt.Sprintf(" - %s", toolErr.Details)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
