// Package export renders recommendation reports for files and terminals.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/contourai-mcp-server/internal/domain"
)

// Format is an export encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat validates a format name. Empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatYAML, nil
	case FormatJSON, FormatYAML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatText:
		return ".txt"
	default:
		return ".yaml"
	}
}

// Report is the exported envelope around one evaluation
type Report struct {
	ReportID       string                `json:"reportId" yaml:"reportId"`
	GeneratedAt    time.Time             `json:"generatedAt" yaml:"generatedAt"`
	Case           domain.CaseData       `json:"case" yaml:"case"`
	Recommendation domain.Recommendation `json:"recommendation" yaml:"recommendation"`
}

// NewReport wraps a recommendation with a fresh report ID.
func NewReport(c domain.CaseData, rec domain.Recommendation) Report {
	return Report{
		ReportID:       uuid.New().String(),
		GeneratedAt:    time.Now().UTC(),
		Case:           c,
		Recommendation: rec,
	}
}

// Encode writes the report to w in the given format.
func Encode(w io.Writer, r Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report as json: %w", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report as yaml: %w", err)
		}
		return enc.Close()
	case FormatText:
		_, err := io.WriteString(w, Text(r))
		return err
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteFile encodes the report into dir and returns the file path. The
// file is named after the report ID.
func WriteFile(dir string, r Report, format Format) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, r, format); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "contour-report-"+r.ReportID+format.Extension())
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// Text renders the plain listing shown in terminals.
func Text(r Report) string {
	rec := r.Recommendation
	var b strings.Builder

	fmt.Fprintf(&b, "Report:        %s\n", r.ReportID)
	fmt.Fprintf(&b, "Generated:     %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Site:          %s\n", caseSite(r.Case))
	b.WriteString("\n")

	if rec.IsNoMatch() {
		b.WriteString("No contouring rule matched this site.\n")
		writeCitations(&b, rec.Citations)
		return b.String()
	}

	fmt.Fprintf(&b, "Summary:       %s\n", rec.Summary)
	fmt.Fprintf(&b, "Stage group:   %s\n", rec.StageGroup)
	fmt.Fprintf(&b, "Risk level:    %s\n", rec.RiskLevel)
	fmt.Fprintf(&b, "Laterality:    %s\n", rec.Laterality)
	b.WriteString("\n")
	fmt.Fprintf(&b, "GTV:           %s\n", rec.GTV)
	fmt.Fprintf(&b, "CTV:           %s\n", rec.CTV)
	fmt.Fprintf(&b, "PTV:           %s\n", rec.PTV)
	fmt.Fprintf(&b, "Elective:      %s\n", rec.ElectiveText)

	if len(rec.DeepExtensions) > 0 {
		b.WriteString("\nDeep extensions:\n")
		for _, d := range rec.DeepExtensions {
			fmt.Fprintf(&b, "  - %s\n", d)
		}
	}

	// Boundaries follow the included level order.
	if len(rec.LevelBoundaries) > 0 {
		b.WriteString("\nLevel boundaries:\n")
		for _, code := range rec.IncludedLevels {
			lb, ok := rec.LevelBoundaries[code]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %s\n", code)
			fmt.Fprintf(&b, "    cranial:   %s\n", lb.Cranial)
			fmt.Fprintf(&b, "    caudal:    %s\n", lb.Caudal)
			fmt.Fprintf(&b, "    medial:    %s\n", lb.Medial)
			fmt.Fprintf(&b, "    lateral:   %s\n", lb.Lateral)
			fmt.Fprintf(&b, "    anterior:  %s\n", lb.Anterior)
			fmt.Fprintf(&b, "    posterior: %s\n", lb.Posterior)
		}
	}

	fmt.Fprintf(&b, "\nExplanation:   %s\n", rec.Explanation)
	writeCitations(&b, rec.Citations)
	return b.String()
}

func caseSite(c domain.CaseData) string {
	if c.Subsite != "" {
		return fmt.Sprintf("%s / %s", c.Site, c.Subsite)
	}
	return string(c.Site)
}

func writeCitations(b *strings.Builder, citations []domain.Citation) {
	b.WriteString("\nCitations:\n")
	for _, c := range citations {
		fmt.Fprintf(b, "  - %s, %s (%d) [%s]\n", c.Organization, c.Title, c.Year, c.Evidence)
	}
}
