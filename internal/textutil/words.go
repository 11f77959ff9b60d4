package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var skillDelimRe = regexp.MustCompile(`[,;/|]`)

// isWordRune treats '+' and '#' as word characters so "c" does not match
// inside "c++" or "c#".
func isWordRune(r rune) bool {
	return r == '_' || r == '+' || r == '#' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ContainsWord reports whether token occurs in text with word boundaries on
// both sides. Both arguments are compared case-insensitively.
func ContainsWord(text, token string) bool {
	return containsBounded(strings.ToLower(text), strings.ToLower(token), true)
}

// ContainsWordPrefix is like ContainsWord but only requires a boundary
// before the token.
func ContainsWordPrefix(text, token string) bool {
	return containsBounded(strings.ToLower(text), strings.ToLower(token), false)
}

func containsBounded(text, token string, trailing bool) bool {
	if token == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(token)
	last, _ := utf8.DecodeLastRuneInString(token)

	for offset := 0; offset <= len(text)-len(token); {
		idx := strings.Index(text[offset:], token)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(token)

		leftOK := true
		if start > 0 && isWordRune(first) {
			prev, _ := utf8.DecodeLastRuneInString(text[:start])
			leftOK = !isWordRune(prev)
		}
		rightOK := true
		if trailing && end < len(text) && isWordRune(last) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			rightOK = !isWordRune(next)
		}
		if leftOK && rightOK {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

// SplitSkills splits a free-form skills field on , ; / | and returns the
// trimmed, lower-cased, non-empty tokens in order.
func SplitSkills(raw string) []string {
	var out []string
	for _, part := range skillDelimRe.Split(raw, -1) {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Words lower-cases text, folds accents and splits it into word tokens
// using the same word-rune rule as ContainsWord.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(FoldAccents(text)), func(r rune) bool {
		return !isWordRune(r)
	})
}
