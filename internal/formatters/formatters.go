package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"internmatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("text", "MatchResponse", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchResponse", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "ParsedResume", &ParsedResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "ParsedResume", &ParsedResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", "DeepProfile", &DeepProfileTextFormatter{})
	registry.RegisterFormatter("markdown", "DeepProfile", &DeepProfileMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.MatchResponse:
		return "MatchResponse"
	case types.ParsedResume:
		return "ParsedResume"
	case types.DeepProfile:
		return "DeepProfile"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter renders any value as YAML via its JSON field names, so both
// formats share one set of keys
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}

// MatchTextFormatter handles text formatting for match results
type MatchTextFormatter struct{}

func (f *MatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResponse)
	if !ok {
		return "", fmt.Errorf("expected MatchResponse, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== RECOMMENDATIONS (%d of %d listings) ===\n", result.Meta.Returned, result.Meta.Candidates)
	fmt.Fprintf(&out, "Ranking: %s | Pool: %d | Taxonomy: %s\n\n", result.Meta.RerankSource, result.Meta.PoolSize, result.Meta.TaxonomyName)

	if len(result.Results) == 0 {
		out.WriteString("No matching internships found.\n")
		return out.String(), nil
	}

	for i, r := range result.Results {
		fmt.Fprintf(&out, "%d. %s", i+1, r.Role)
		if r.Company != "" {
			fmt.Fprintf(&out, " at %s", r.Company)
		}
		out.WriteString("\n")
		fmt.Fprintf(&out, "   Match: %s (%s) | %s\n", r.MatchPercentage, r.MatchLabel, r.LocationLabel)
		if len(r.MatchedSkills) > 0 {
			fmt.Fprintf(&out, "   Matched skills: %s\n", strings.Join(r.MatchedSkills, ", "))
		}
		if r.GapAnalysis != nil && len(r.GapAnalysis.MissingSkills) > 0 {
			fmt.Fprintf(&out, "   Missing skills: %s\n", strings.Join(r.GapAnalysis.MissingSkills, ", "))
		}
		if r.AIExplanation != "" {
			fmt.Fprintf(&out, "   Why: %s\n", r.AIExplanation)
		}
		if r.Roadmap != nil {
			fmt.Fprintf(&out, "   Roadmap: %s\n", r.Roadmap.Summary)
			for _, d := range r.Roadmap.Days {
				fmt.Fprintf(&out, "     Day %d: %s - %s\n", d.Day, d.Topic, d.Action)
			}
		}
		out.WriteString("\n")
	}

	return out.String(), nil
}

func (f *MatchTextFormatter) SupportedType() string {
	return "MatchResponse"
}

// MatchMarkdownFormatter handles markdown formatting for match results
type MatchMarkdownFormatter struct{}

func (f *MatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResponse)
	if !ok {
		return "", fmt.Errorf("expected MatchResponse, got %T", data)
	}

	var out strings.Builder
	out.WriteString("# Internship Recommendations\n\n")
	fmt.Fprintf(&out, "_%d of %d listings, ranked by %s._\n\n", result.Meta.Returned, result.Meta.Candidates, result.Meta.RerankSource)

	if len(result.Results) == 0 {
		out.WriteString("No matching internships found.\n")
		return out.String(), nil
	}

	out.WriteString("| # | Role | Company | Location | Match |\n")
	out.WriteString("|---|------|---------|----------|-------|\n")
	for i, r := range result.Results {
		fmt.Fprintf(&out, "| %d | %s | %s | %s | %s %s |\n",
			i+1, escapeCell(r.Role), escapeCell(r.Company), escapeCell(r.LocationLabel), r.MatchPercentage, r.MatchLabel)
	}
	out.WriteString("\n")

	for i, r := range result.Results {
		fmt.Fprintf(&out, "## %d. %s\n\n", i+1, r.Role)
		if r.AIExplanation != "" {
			fmt.Fprintf(&out, "%s\n\n", r.AIExplanation)
		}
		if len(r.MatchedSkills) > 0 {
			fmt.Fprintf(&out, "**Matched skills:** %s\n\n", strings.Join(r.MatchedSkills, ", "))
		}
		if r.GapAnalysis != nil && len(r.GapAnalysis.MissingSkills) > 0 {
			fmt.Fprintf(&out, "**Missing skills:** %s\n\n", strings.Join(r.GapAnalysis.MissingSkills, ", "))
		}
		if r.Roadmap != nil && len(r.Roadmap.Days) > 0 {
			fmt.Fprintf(&out, "**Roadmap:** %s\n\n", r.Roadmap.Summary)
			for _, d := range r.Roadmap.Days {
				fmt.Fprintf(&out, "- Day %d: [%s](%s) %s\n", d.Day, d.Topic, d.Link, d.Action)
			}
			out.WriteString("\n")
		}
	}

	return out.String(), nil
}

func (f *MatchMarkdownFormatter) SupportedType() string {
	return "MatchResponse"
}

// ParsedResumeTextFormatter handles text formatting for parsed resumes
type ParsedResumeTextFormatter struct{}

func (f *ParsedResumeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParsedResume)
	if !ok {
		return "", fmt.Errorf("expected ParsedResume, got %T", data)
	}

	var out strings.Builder
	out.WriteString("=== PARSED RESUME ===\n")
	fmt.Fprintf(&out, "Skills: %s\n", joinOrNone(result.Skills))
	fmt.Fprintf(&out, "Education: %s\n", orNone(result.Education))
	fmt.Fprintf(&out, "Experience: %d years\n", result.ExperienceYears)
	if result.Summary != "" {
		fmt.Fprintf(&out, "\nSummary:\n%s\n", result.Summary)
	}
	return out.String(), nil
}

func (f *ParsedResumeTextFormatter) SupportedType() string {
	return "ParsedResume"
}

// ParsedResumeMarkdownFormatter handles markdown formatting for parsed resumes
type ParsedResumeMarkdownFormatter struct{}

func (f *ParsedResumeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParsedResume)
	if !ok {
		return "", fmt.Errorf("expected ParsedResume, got %T", data)
	}

	var out strings.Builder
	out.WriteString("# Parsed Resume\n\n")
	fmt.Fprintf(&out, "- **Skills:** %s\n", joinOrNone(result.Skills))
	fmt.Fprintf(&out, "- **Education:** %s\n", orNone(result.Education))
	fmt.Fprintf(&out, "- **Experience:** %d years\n", result.ExperienceYears)
	if result.Summary != "" {
		fmt.Fprintf(&out, "\n> %s\n", result.Summary)
	}
	return out.String(), nil
}

func (f *ParsedResumeMarkdownFormatter) SupportedType() string {
	return "ParsedResume"
}

// DeepProfileTextFormatter handles text formatting for resume analysis
type DeepProfileTextFormatter struct{}

func (f *DeepProfileTextFormatter) Format(data any) (string, error) {
	p, ok := data.(types.DeepProfile)
	if !ok {
		return "", fmt.Errorf("expected DeepProfile, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== RESUME ANALYSIS (%s) ===\n", p.Source)
	fmt.Fprintf(&out, "Name: %s\n", orNone(p.FullName))
	fmt.Fprintf(&out, "Contact: %s %s\n", orNone(p.Email), p.Phone)
	fmt.Fprintf(&out, "Location: %s\n", orNone(p.Location))
	fmt.Fprintf(&out, "Experience: %s (%d years)\n", p.ExperienceLevel, p.ExperienceYears)
	fmt.Fprintf(&out, "Education: %s %s\n", orNone(p.EducationLevel), p.College)
	fmt.Fprintf(&out, "Resume strength: %d/100\n\n", p.ResumeStrengthScore)
	fmt.Fprintf(&out, "Skills: %s\n", joinOrNone(p.ExtractedSkills))
	fmt.Fprintf(&out, "Tools: %s\n", joinOrNone(p.ToolsAndTechnologies))
	fmt.Fprintf(&out, "Domains: %s\n", joinOrNone(p.Domains))
	fmt.Fprintf(&out, "Soft skills: %s\n", joinOrNone(p.SoftSkills))
	return out.String(), nil
}

func (f *DeepProfileTextFormatter) SupportedType() string {
	return "DeepProfile"
}

// DeepProfileMarkdownFormatter handles markdown formatting for resume analysis
type DeepProfileMarkdownFormatter struct{}

func (f *DeepProfileMarkdownFormatter) Format(data any) (string, error) {
	p, ok := data.(types.DeepProfile)
	if !ok {
		return "", fmt.Errorf("expected DeepProfile, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# Resume Analysis: %s\n\n", orNone(p.FullName))
	fmt.Fprintf(&out, "_Source: %s. Resume strength %d/100._\n\n", p.Source, p.ResumeStrengthScore)
	out.WriteString("| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&out, "| Email | %s |\n", escapeCell(p.Email))
	fmt.Fprintf(&out, "| Phone | %s |\n", escapeCell(p.Phone))
	fmt.Fprintf(&out, "| Location | %s |\n", escapeCell(p.Location))
	fmt.Fprintf(&out, "| Experience | %s (%d years) |\n", escapeCell(p.ExperienceLevel), p.ExperienceYears)
	fmt.Fprintf(&out, "| Education | %s |\n", escapeCell(strings.TrimSpace(p.EducationLevel+" "+p.College)))
	out.WriteString("\n## Skills\n\n")
	for _, s := range p.ExtractedSkills {
		fmt.Fprintf(&out, "- %s\n", s)
	}
	if len(p.ToolsAndTechnologies) > 0 {
		fmt.Fprintf(&out, "\n**Tools:** %s\n", strings.Join(p.ToolsAndTechnologies, ", "))
	}
	return out.String(), nil
}

func (f *DeepProfileMarkdownFormatter) SupportedType() string {
	return "DeepProfile"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// GlobalRegistry is the default formatter registry instance
var GlobalRegistry = NewFormatterRegistry()
