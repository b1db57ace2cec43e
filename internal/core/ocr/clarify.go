package ocr

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ApplyClarification replaces every whole-word, case-insensitive occurrence of
// originalWord in text with replacement. Both strings are taken literally.
func ApplyClarification(text, originalWord, replacement string) string {
	if strings.TrimSpace(originalWord) == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(originalWord))

	var sb strings.Builder
	last, pos := 0, 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if wholeWord(text, start, end) {
			sb.WriteString(text[last:start])
			sb.WriteString(replacement)
			last, pos = end, end
			continue
		}
		// retry one rune later; a shorter overlap may still be a whole word
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// wholeWord applies \b semantics at both ends of text[start:end], with
// Unicode letters and digits counting as word characters.
func wholeWord(text string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(text[start:end])
	if isWordRune(first) && start > 0 {
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(before) {
			return false
		}
	}
	lastRune, _ := utf8.DecodeLastRuneInString(text[start:end])
	if isWordRune(lastRune) && end < len(text) {
		after, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(after) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
