package match

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"internmatch/internal/errors"
	"internmatch/internal/taxonomy"
	"internmatch/internal/types"
)

var (
	emailRe = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phoneRe = regexp.MustCompile(`(\+?\d{1,3}[- ]?)?\d{10}`)
	fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// Deep profile sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// DefaultDeepParsePrompt is the user prompt for structured resume analysis.
// The resume text is appended after it.
const DefaultDeepParsePrompt = `Extract the following structured information from this resume text as a clean JSON object.
NO CONVERSATIONAL TEXT. ONLY JSON.

OUTPUT SCHEMA:
{
  "fullName": "Name detected",
  "email": "Email detected",
  "phone": "Phone detected",
  "location": "City, State",
  "extractedSkills": ["skill1", "skill2"],
  "domains": ["domain1"],
  "toolsAndTechnologies": ["tool1"],
  "softSkills": ["skill1"],
  "experienceLevel": "Entry/Intermediate/Senior",
  "experienceYears": 0,
  "educationLevel": "Bachelor/Master/Diploma/etc.",
  "education": "Degree Name",
  "college": "College Name",
  "graduationYear": "YYYY",
  "resumeStrengthScore": 0
}
resumeStrengthScore is an integer from 0 to 100.

RESUME TEXT:
`

// DeepParser turns a resume into a DeepProfile with a generator, falling
// back to the local keyword parser when the generator is unavailable.
type DeepParser struct {
	gen      Generator
	store    *taxonomy.Store
	settings Settings
	prompt   string
	logger   *errors.Logger
}

// NewDeepParser creates a deep parser. A nil generator always falls back.
func NewDeepParser(gen Generator, store *taxonomy.Store, settings Settings, prompt string, logger *errors.Logger) *DeepParser {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultDeepParsePrompt
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &DeepParser{gen: gen, store: store, settings: settings, prompt: prompt, logger: logger}
}

// Parse analyses resumeText. Text shorter than the configured minimum is a
// validation error; every other failure degrades to the fallback profile.
func (d *DeepParser) Parse(ctx context.Context, resumeText string) (types.DeepProfile, error) {
	trimmed := strings.TrimSpace(resumeText)
	if utf8.RuneCountInString(trimmed) < d.settings.Limits.MinDeepParseChars {
		return types.DeepProfile{}, errors.NewValidationError(errors.ErrCodeResumeTooShort,
			"resume text is too short to analyze", nil).
			WithContext("min_chars", d.settings.Limits.MinDeepParseChars)
	}

	fallback := d.fallbackProfile(trimmed)
	if d.gen == nil {
		return fallback, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, d.settings.DeepParse.Timeout)
	defer cancel()

	text, err := d.gen.Generate(callCtx, d.prompt+trimmed, types.GenerateOptions{
		Operation:       "deepParse",
		Temperature:     d.settings.DeepParse.Temperature,
		MaxOutputTokens: d.settings.DeepParse.MaxOutputTokens,
		JSONResponse:    true,
	})
	if err != nil {
		d.logger.Warn("Deep parse generator failed, using fallback", "error", err.Error())
		return fallback, nil
	}

	profile, ok := mergeDeepProfile(extractJSONObject(text), fallback)
	if !ok {
		d.logger.Warn("Deep parse response was not a JSON object, using fallback", "response_chars", len(text))
		return fallback, nil
	}
	return profile, nil
}

func (d *DeepParser) fallbackProfile(text string) types.DeepProfile {
	parsed := ParseResume(d.store.Current(), text, nil, d.settings.Limits.SummaryChars)
	return types.DeepProfile{
		FullName:             "Candidate Name",
		Email:                emailRe.FindString(text),
		Phone:                phoneRe.FindString(text),
		ExtractedSkills:      parsed.Skills,
		Domains:              []string{},
		ToolsAndTechnologies: []string{},
		SoftSkills:           []string{},
		ExperienceLevel:      "Entry",
		ExperienceYears:      parsed.ExperienceYears,
		Education:            parsed.Education,
		ResumeStrengthScore:  50,
		Source:               SourceFallback,
	}
}

// extractJSONObject strips markdown fences, then takes the first '{'
// through the last '}'.
func extractJSONObject(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// mergeDeepProfile reads each field independently so a single wrong-typed
// field does not discard the rest. Missing or empty fields keep the
// fallback value; locally extracted contact details fill gaps.
func mergeDeepProfile(raw string, fb types.DeepProfile) (types.DeepProfile, bool) {
	if raw == "" || !gjson.Valid(raw) {
		return fb, false
	}
	obj := gjson.Parse(raw)
	if !obj.IsObject() {
		return fb, false
	}

	p := fb
	p.Source = SourceLLM
	p.FullName = stringField(obj, "fullName", fb.FullName)
	p.Email = stringField(obj, "email", fb.Email)
	p.Phone = stringField(obj, "phone", fb.Phone)
	p.Location = stringField(obj, "location", fb.Location)
	p.ExtractedSkills = listField(obj, "extractedSkills", fb.ExtractedSkills)
	p.Domains = listField(obj, "domains", fb.Domains)
	p.ToolsAndTechnologies = listField(obj, "toolsAndTechnologies", fb.ToolsAndTechnologies)
	p.SoftSkills = listField(obj, "softSkills", fb.SoftSkills)
	p.ExperienceLevel = stringField(obj, "experienceLevel", fb.ExperienceLevel)
	p.ExperienceYears = intField(obj, "experienceYears", fb.ExperienceYears)
	p.EducationLevel = stringField(obj, "educationLevel", fb.EducationLevel)
	p.Education = stringField(obj, "education", fb.Education)
	p.College = stringField(obj, "college", fb.College)
	p.GraduationYear = stringField(obj, "graduationYear", fb.GraduationYear)
	p.ResumeStrengthScore = clampInt(intField(obj, "resumeStrengthScore", fb.ResumeStrengthScore), 0, 100)
	return p, true
}

func stringField(obj gjson.Result, key, def string) string {
	v := obj.Get(key)
	switch v.Type {
	case gjson.String, gjson.Number:
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return def
}

func intField(obj gjson.Result, key string, def int) int {
	v := obj.Get(key)
	switch v.Type {
	case gjson.Number:
		return int(v.Int())
	case gjson.String:
		if n := gjson.Parse(strings.TrimSpace(v.Str)); n.Type == gjson.Number {
			return int(n.Int())
		}
	}
	return def
}

func listField(obj gjson.Result, key string, def []string) []string {
	v := obj.Get(key)
	if !v.IsArray() {
		return def
	}
	out := []string{}
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" && item.Type == gjson.String {
			out = append(out, s)
		}
	}
	return out
}
