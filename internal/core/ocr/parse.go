package ocr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

const (
	MaxClarificationSuggestions = 3
	MaxSearchSuggestions        = 5
)

// cleanResponse removes markdown code blocks and any chatter around the JSON object
func cleanResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start > 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}

func decodeResponse(response string, v any) error {
	if err := json.Unmarshal([]byte(cleanResponse(response)), v); err != nil {
		return apperror.Service("malformed response from model", err)
	}
	return nil
}

func missingField(name string) error {
	return apperror.Service("malformed response from model", fmt.Errorf("missing %q", name))
}

func parseTextResult(response string) (*TextResult, error) {
	var raw struct {
		ExtractedText *string `json:"extractedText"`
	}
	if err := decodeResponse(response, &raw); err != nil {
		return nil, err
	}
	if raw.ExtractedText == nil {
		return nil, missingField("extractedText")
	}
	return &TextResult{ExtractedText: *raw.ExtractedText}, nil
}

func parseAnnotatedResult(response string) (*AnnotatedResult, error) {
	var raw struct {
		ContextualSummary string          `json:"contextualSummary"`
		ExtractedText     *string         `json:"extractedText"`
		Clarifications    []Clarification `json:"clarifications"`
	}
	if err := decodeResponse(response, &raw); err != nil {
		return nil, err
	}
	if raw.ExtractedText == nil {
		return nil, missingField("extractedText")
	}

	clarifications := make([]Clarification, 0, len(raw.Clarifications))
	for _, c := range raw.Clarifications {
		c.OriginalWord = strings.TrimSpace(c.OriginalWord)
		c.Suggestions = cleanList(c.Suggestions, MaxClarificationSuggestions)
		// a clarification nobody can act on is noise
		if c.OriginalWord == "" || len(c.Suggestions) == 0 {
			continue
		}
		clarifications = append(clarifications, c)
	}

	return &AnnotatedResult{
		ContextualSummary: strings.TrimSpace(raw.ContextualSummary),
		ExtractedText:     *raw.ExtractedText,
		Clarifications:    clarifications,
	}, nil
}

func parseSummary(response string) (string, error) {
	var raw struct {
		Summary *string `json:"summary"`
	}
	if err := decodeResponse(response, &raw); err != nil {
		return "", err
	}
	if raw.Summary == nil || strings.TrimSpace(*raw.Summary) == "" {
		return "", missingField("summary")
	}
	return strings.TrimSpace(*raw.Summary), nil
}

func parseSuggestions(response string) ([]string, error) {
	var raw struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := decodeResponse(response, &raw); err != nil {
		return nil, err
	}
	suggestions := cleanList(raw.Suggestions, MaxSearchSuggestions)
	if len(suggestions) == 0 {
		return nil, missingField("suggestions")
	}
	return suggestions, nil
}

// cleanList trims, drops blanks and duplicates, keeps order, caps at limit
func cleanList(items []string, limit int) []string {
	out := make([]string, 0, min(len(items), limit))
	seen := make(map[string]bool, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
