package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/contourai-mcp-server/internal/domain"
)

func sampleReport() Report {
	c := domain.CaseData{
		Site:     domain.SiteHeadAndNeck,
		Subsite:  domain.SubsiteOropharynx,
		TStage:   "T2",
		NStage:   "N1",
		MarginMm: domain.NewMeasurement(3),
	}
	rec := domain.Recommendation{
		Summary:        "HPV-positive oropharyngeal carcinoma (Stage I)",
		Explanation:    "Oropharynx rules applied in order: OPX-DEESC.",
		StageGroup:     "Stage I",
		GTV:            "Gross disease.",
		CTV:            "GTV + 5 mm.",
		PTV:            "CTV + 3 mm.",
		ElectiveText:   "Ipsilateral levels IIa, III",
		IncludedLevels: []string{"IIa", "III"},
		LevelBoundaries: map[string]domain.LevelBoundary{
			"IIa": {Cranial: "Skull base", Caudal: "Hyoid"},
			"III": {Cranial: "Hyoid", Caudal: "Cricoid"},
		},
		Laterality:     domain.Ipsilateral,
		DeepExtensions: []string{"Parapharyngeal space."},
		RiskLevel:      domain.RiskLow,
		Citations:      []domain.Citation{domain.ICRU83},
	}
	return NewReport(c, rec)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" YAML ", FormatYAML, false},
		{"text", FormatText, false},
		{"", FormatYAML, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewReport(t *testing.T) {
	r := sampleReport()

	_, err := uuid.Parse(r.ReportID)
	assert.NoError(t, err)
	assert.False(t, r.GeneratedAt.IsZero())
	assert.NotEqual(t, r.ReportID, sampleReport().ReportID)
}

func TestEncode_JSONKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleReport(), FormatJSON))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Contains(t, out, "reportId")
	assert.Contains(t, out, "generatedAt")

	rec := out["recommendation"].(map[string]any)
	for _, key := range []string{"summary", "explanation", "stageGroup", "gtv", "ctv", "ptv", "electiveText",
		"includedLevels", "levelBoundaries", "laterality", "deepExtensions", "riskLevel", "citations"} {
		assert.Contains(t, rec, key)
	}

	c := out["case"].(map[string]any)
	assert.Equal(t, float64(3), c["marginMm"])
	assert.Equal(t, "T2", c["tStage"])
}

func TestEncode_YAML(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r, FormatYAML))

	var out struct {
		ReportID       string                `yaml:"reportId"`
		Case           domain.CaseData       `yaml:"case"`
		Recommendation domain.Recommendation `yaml:"recommendation"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, r.ReportID, out.ReportID)
	assert.Equal(t, r.Recommendation.IncludedLevels, out.Recommendation.IncludedLevels)
	assert.Equal(t, r.Recommendation.LevelBoundaries, out.Recommendation.LevelBoundaries)
	v, ok := out.Case.MarginMm.Value()
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	assert.True(t, strings.Contains(buf.String(), "  riskLevel: LOW"))
}

func TestEncode_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleReport(), FormatText))

	text := buf.String()
	assert.Contains(t, text, "Head & Neck / Oropharynx")
	assert.Contains(t, text, "Risk level:    LOW")
	assert.Contains(t, text, "Parapharyngeal space.")
	assert.Contains(t, text, "ICRU, ICRU Report 83 (2010) [HIGH]")
}

func TestEncode_TextNoMatch(t *testing.T) {
	r := NewReport(domain.CaseData{Site: "Unknown Site"}, domain.NoMatch())

	text := Text(r)
	assert.Contains(t, text, "No contouring rule matched")
	assert.NotContains(t, text, "Summary:")
}

func TestEncode_TextLevelOrder(t *testing.T) {
	r := sampleReport()
	r.Recommendation.IncludedLevels = []string{"IIa", "III", "IV", "RPN", "IIb"}
	r.Recommendation.LevelBoundaries = map[string]domain.LevelBoundary{
		"IIa": {Cranial: "Skull base"},
		"IIb": {Cranial: "Skull base"},
		"III": {Cranial: "Hyoid"},
		"RPN": {Cranial: "Skull base"},
	}

	text := Text(r)
	var order []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "    ") && !strings.HasPrefix(line, "  - ") {
			order = append(order, strings.TrimSpace(line))
		}
	}
	assert.Equal(t, []string{"IIa", "III", "RPN", "IIb"}, order)
}

func TestEncode_JSONLenientMeasurement(t *testing.T) {
	for _, raw := range []string{".5", "+2", "2.", "0x1p1"} {
		t.Run(raw, func(t *testing.T) {
			r := sampleReport()
			r.Case = domain.CaseData{Site: domain.SiteBreast, MarginMm: domain.ParseMeasurement(raw)}

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, r, FormatJSON))

			var back Report
			require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
			want, _ := r.Case.MarginMm.Value()
			got, ok := back.Case.MarginMm.Value()
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, sampleReport(), Format("pdf")))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	r := sampleReport()

	path, err := WriteFile(dir, r, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contour-report-"+r.ReportID+".json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.ReportID, back.ReportID)
	assert.Equal(t, r.Recommendation, back.Recommendation)
}
