// Package textutil cleans free-text listing and profile fields before they
// reach the matcher.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	wrapperRe       = regexp.MustCompile(`^[('"]+|[)'"]+$`)
	locationNoiseRe = regexp.MustCompile(`[()\[\]'"]`)
)

// Normalize applies NFKC, drops control characters and collapses whitespace.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return CollapseWhitespace(text)
}

// FoldAccents removes combining marks so "Bengalurū" compares equal to "Bengaluru".
func FoldAccents(text string) string {
	// Transformers carry state, so build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// CollapseWhitespace turns every whitespace run into one space and trims.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// StripHTML returns the visible text of an HTML fragment. Plain text is
// returned with whitespace collapsed.
func StripHTML(text string) string {
	if !looksLikeHTML(text) {
		return CollapseWhitespace(text)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return CollapseWhitespace(text)
	}
	doc.Find("script, style, noscript").Remove()
	// Block elements otherwise glue adjacent words together.
	doc.Find("p, br, li, div, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return CollapseWhitespace(doc.Text())
}

// Clean is the full pipeline for description-like fields.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	return Normalize(StripHTML(text))
}

// StripWrapperArtifacts removes tuple-export debris such as "('Chennai')".
// Only values that start with a quote inside a parenthesis are touched.
func StripWrapperArtifacts(value string) string {
	if strings.HasPrefix(value, "('") || strings.HasPrefix(value, `("`) {
		return wrapperRe.ReplaceAllString(value, "")
	}
	return value
}

// CleanLocation strips bracket and quote noise, de-duplicates the comma
// separated parts keeping first occurrence order and rejoins them.
func CleanLocation(value string) string {
	value = locationNoiseRe.ReplaceAllString(value, "")
	seen := make(map[string]struct{})
	var parts []string
	for _, p := range strings.Split(value, ",") {
		p = CollapseWhitespace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}

type locationAlias struct {
	fragment  string
	canonical string
}

// Checked in order; the first fragment contained in the input wins.
var locationAliases = []locationAlias{
	{"b'lore", "Bangalore"},
	{"blr", "Bangalore"},
	{"bengaluru", "Bangalore"},
	{"mumbai", "Mumbai"},
	{"bom", "Mumbai"},
	{"delhi", "Delhi"},
	{"ncr", "Delhi NCR"},
	{"gurgaon", "Gurugram"},
	{"hyd", "Hyderabad"},
	{"pun", "Pune"},
}

// NormalizeLocation maps common spellings onto a canonical city name.
// An empty location means the listing is remote.
func NormalizeLocation(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Remote"
	}
	lower := strings.ToLower(FoldAccents(trimmed))
	for _, a := range locationAliases {
		if strings.Contains(lower, a.fragment) {
			return a.canonical
		}
	}
	return cases.Title(language.English).String(lower)
}

func looksLikeHTML(text string) bool {
	return strings.ContainsAny(text, "<&")
}
