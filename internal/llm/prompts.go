package llm

import (
	_ "embed"
	"strings"
	"text/template"
)

// Prompt is a named text template rendered against a flow input.
type Prompt struct {
	Name string
	tmpl *template.Template
}

// Render executes the template with the given input.
func (p *Prompt) Render(in any) (string, error) {
	var b strings.Builder
	if err := p.tmpl.Execute(&b, in); err != nil {
		return "", err
	}
	return b.String(), nil
}

var (
	//go:embed prompts/classify.tmpl
	classifyTmpl string
	//go:embed prompts/summarize.tmpl
	summarizeTmpl string
	//go:embed prompts/explain.tmpl
	explainTmpl string
	//go:embed prompts/questions.tmpl
	questionsTmpl string
	//go:embed prompts/term.tmpl
	termTmpl string
)

var (
	// ClassifyPrompt labels document text with one of the closed set of types.
	ClassifyPrompt = mustPrompt("autoTagDocumentType", classifyTmpl)
	// SummarizePrompt produces a short synopsis of document text.
	SummarizePrompt = mustPrompt("summarizeDocument", summarizeTmpl)
	// ExplainPrompt produces a sectioned plain-language explanation.
	ExplainPrompt = mustPrompt("explainDocument", explainTmpl)
	// QuestionsPrompt produces clarifying questions for a doctor visit.
	QuestionsPrompt = mustPrompt("generateDoctorQuestions", questionsTmpl)
	// TermPrompt explains a single term, optionally with surrounding context.
	TermPrompt = mustPrompt("explainMedicalTerm", termTmpl)
)

func mustPrompt(name, text string) *Prompt {
	return &Prompt{
		Name: name,
		tmpl: template.Must(template.New(name).Parse(text)),
	}
}
