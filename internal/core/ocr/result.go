package ocr

// Kind tags the variant a flow produced
type Kind string

const (
	KindText                Kind = "text"
	KindAnnotatedText       Kind = "annotatedText"
	KindAnalysisSuggestions Kind = "analysis+suggestions"
)

// Result is one of *TextResult, *AnnotatedResult or *AnalysisResult
type Result interface {
	Kind() Kind
}

// Transcript is implemented by the variants that carry extracted text;
// only those are written to history.
type Transcript interface {
	Result
	Transcript() string
}

type TextResult struct {
	ExtractedText string `json:"extractedText"`
}

func (*TextResult) Kind() Kind { return KindText }

func (r *TextResult) Transcript() string { return r.ExtractedText }

type Clarification struct {
	OriginalWord string   `json:"originalWord"`
	Suggestions  []string `json:"suggestions"`
	Reasoning    string   `json:"reasoning"`
}

type AnnotatedResult struct {
	ContextualSummary string          `json:"contextualSummary"`
	ExtractedText     string          `json:"extractedText"`
	Clarifications    []Clarification `json:"clarifications"`
}

func (*AnnotatedResult) Kind() Kind { return KindAnnotatedText }

func (r *AnnotatedResult) Transcript() string { return r.ExtractedText }

// AnalysisResult holds a summary and ranked search suggestions; either half
// may be empty when only one of the two flows ran.
type AnalysisResult struct {
	Summary     string   `json:"summary,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (*AnalysisResult) Kind() Kind { return KindAnalysisSuggestions }

// Envelope is the JSON shape handlers return: the variant tag plus its payload
type Envelope struct {
	Kind   Kind   `json:"kind"`
	Result Result `json:"result"`
}

func Wrap(r Result) Envelope {
	return Envelope{Kind: r.Kind(), Result: r}
}
