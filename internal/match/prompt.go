package match

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"internmatch/internal/textutil"
	"internmatch/internal/types"
)

// DefaultRerankPrompt is the user prompt sent with the re-rank request.
const DefaultRerankPrompt = `For the candidate and the opportunities below, reorder the opportunities from best to worst fit and write a personalised "Road to 100%" two-day fast track for each one.

CANDIDATE PROFILE:
- Name: {{.Name}}
- Current Skills: {{join .Skills ", "}}
- Career Goal: {{.CareerGoal}}
- Education: {{.Education}}

OPPORTUNITIES:
{{range .Jobs}}JOB #{{.Index}} (Index {{.Index}}):
- Role: {{.Role}}
- Company: {{.Company}}
- Location: {{.Location}} ({{.LocationLabel}})
- Requirements: {{.Requirements}}
- Verified Matches: {{.Verified}}

{{end}}For each opportunity:
1. explanation: ONE match highlight that only cites the verified matches.
2. roadmap:
   - Day 1: learn the basics of the most critical missing skill, with a tutorial search link.
   - Day 2: ONE specific project idea that uses that skill.

Respond with a strict JSON array, best fit first:
[
  {
    "index": <Index>,
    "explanation": "Brief highlight.",
    "roadmap": {
      "summary": "One sentence bridge to 100%.",
      "days": [
        {"day": 1, "topic": "Master Basics", "action": "Watch curated tutorials.", "link": "https://www.youtube.com/results?search_query=..."},
        {"day": 2, "topic": "Build Proof", "action": "Project Idea: [Name] - [two sentence description]", "link": ""}
      ]
    }
  }
]
Only output the JSON array.`

// RerankPromptJob is one opportunity as shown to the model.
type RerankPromptJob struct {
	Index         int
	Role          string
	Company       string
	Location      string
	LocationLabel string
	Requirements  string
	Verified      string
}

// RerankPromptData is the template input for the re-rank prompt.
type RerankPromptData struct {
	Name       string
	Skills     []string
	CareerGoal string
	Education  string
	Jobs       []RerankPromptJob
}

var promptFuncs = template.FuncMap{"join": strings.Join}

// ParsePromptTemplate compiles a user-supplied re-rank prompt.
func ParsePromptTemplate(text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultRerankPrompt
	}
	tmpl, err := template.New("rerank").Funcs(promptFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid rerank prompt template: %w", err)
	}
	return tmpl, nil
}

func newRerankPromptData(p types.CandidateProfile, skills []string, education string, jobs []types.RankedOpportunity, rs RerankSettings) RerankPromptData {
	data := RerankPromptData{
		Name:       p.Name,
		Skills:     head(skills, rs.PromptSkills),
		CareerGoal: p.CareerGoal,
		Education:  education,
		Jobs:       make([]RerankPromptJob, len(jobs)),
	}
	for i, j := range jobs {
		required := j.SkillsText()
		if strings.TrimSpace(required) == "" {
			required = "N/A"
		}
		verified := "NONE"
		if v := VerifiedMatches(skills, required); len(v) > 0 {
			verified = strings.Join(v, ", ")
		}
		label := j.LocationLabel
		if label == "" {
			label = "Nationwide match"
		}
		data.Jobs[i] = RerankPromptJob{
			Index:         i,
			Role:          j.Role,
			Company:       j.Company,
			Location:      j.Location,
			LocationLabel: label,
			Requirements:  textutil.Truncate(required, rs.SnippetChars),
			Verified:      verified,
		}
	}
	return data
}

func renderPrompt(tmpl *template.Template, data RerankPromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
