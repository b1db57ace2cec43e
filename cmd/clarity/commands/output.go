package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
)

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(cmd *cobra.Command, res ocr.Result) {
	w := cmd.OutOrStdout()
	switch r := res.(type) {
	case *ocr.TextResult:
		fmt.Fprintln(w, r.ExtractedText)
	case *ocr.AnnotatedResult:
		if r.ContextualSummary != "" {
			fmt.Fprintf(w, "Context: %s\n\n", r.ContextualSummary)
		}
		fmt.Fprintln(w, r.ExtractedText)
		if len(r.Clarifications) > 0 {
			fmt.Fprintln(w, "\nClarifications:")
			for _, c := range r.Clarifications {
				fmt.Fprintf(w, "  %s → %s\n", c.OriginalWord, strings.Join(c.Suggestions, ", "))
				if c.Reasoning != "" {
					fmt.Fprintf(w, "    %s\n", c.Reasoning)
				}
			}
		}
	case *ocr.AnalysisResult:
		if r.Summary != "" {
			fmt.Fprintf(w, "Summary: %s\n", r.Summary)
		}
		printList(w, "Suggested searches:", r.Suggestions)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}
