package flows

import (
	"context"
	"errors"
	"strings"

	"medisafe-backend/internal/llm"
	"medisafe-backend/internal/shared/metrics"
)

// DocumentType is the closed set of document classifications.
type DocumentType string

const (
	TypeLabReport    DocumentType = "Lab Report"
	TypePrescription DocumentType = "Prescription"
	TypeInvoice      DocumentType = "Invoice"
	TypeOther        DocumentType = "Other"
)

// DocumentTypes lists every member of the taxonomy.
var DocumentTypes = []DocumentType{TypeLabReport, TypePrescription, TypeInvoice, TypeOther}

// CoerceDocumentType maps a raw classifier answer onto the taxonomy.
// Anything unrecognized becomes TypeOther.
func CoerceDocumentType(raw string) DocumentType {
	trimmed := strings.TrimSpace(raw)
	for _, t := range DocumentTypes {
		if strings.EqualFold(trimmed, string(t)) {
			return t
		}
	}
	return TypeOther
}

// ValidDocumentType reports whether raw is already a member of the taxonomy.
func ValidDocumentType(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	for _, t := range DocumentTypes {
		if trimmed == string(t) {
			return true
		}
	}
	return false
}

// Service exposes the AI flows over a shared completer.
type Service struct {
	LLM llm.Completer
}

// NewService constructs a flow service.
func NewService(c llm.Completer) *Service {
	return &Service{LLM: c}
}

// ClassifyInput is the input contract of the classification flow.
type ClassifyInput struct {
	OCRText string
}

// Validate enforces the classification input contract.
func (in ClassifyInput) Validate() error {
	if strings.TrimSpace(in.OCRText) == "" {
		return errors.New("ocrText must not be empty")
	}
	return nil
}

type classifyOutput struct {
	DocumentType string `json:"documentType"`
}

func (out classifyOutput) Validate() error {
	if strings.TrimSpace(out.DocumentType) == "" {
		return errors.New("documentType missing")
	}
	return nil
}

// ClassifyDocument labels document text with one of the closed set of types.
// Out-of-taxonomy answers are coerced to TypeOther.
func (s *Service) ClassifyDocument(ctx context.Context, ocrText string) (DocumentType, error) {
	out, err := invoke[ClassifyInput, classifyOutput](ctx, s, llm.ClassifyPrompt, ClassifyInput{OCRText: ocrText})
	if err != nil {
		return "", err
	}
	return CoerceDocumentType(out.DocumentType), nil
}

// SummarizeInput is the input contract of the summarization flow.
type SummarizeInput struct {
	DocumentText string
}

// Validate enforces the summarization input contract.
func (in SummarizeInput) Validate() error {
	if strings.TrimSpace(in.DocumentText) == "" {
		return errors.New("documentText must not be empty")
	}
	return nil
}

type summarizeOutput struct {
	Summary string `json:"summary"`
}

func (out summarizeOutput) Validate() error {
	if strings.TrimSpace(out.Summary) == "" {
		return errors.New("summary missing")
	}
	return nil
}

// SummarizeDocument produces a short synopsis of document text. Length is
// bounded by prompt instruction only.
func (s *Service) SummarizeDocument(ctx context.Context, documentText string) (string, error) {
	out, err := invoke[SummarizeInput, summarizeOutput](ctx, s, llm.SummarizePrompt, SummarizeInput{DocumentText: documentText})
	if err != nil {
		return "", err
	}
	return out.Summary, nil
}

// ExplainInput is the input contract of the explanation flow.
type ExplainInput struct {
	DocumentText string
}

// Validate enforces the explanation input contract.
func (in ExplainInput) Validate() error {
	if strings.TrimSpace(in.DocumentText) == "" {
		return errors.New("documentText must not be empty")
	}
	return nil
}

type explainOutput struct {
	Explanation string `json:"explanation"`
}

func (out explainOutput) Validate() error {
	if strings.TrimSpace(out.Explanation) == "" {
		return errors.New("explanation missing")
	}
	return nil
}

// ExplainDocument produces a plain-language explanation of a full document.
// The four-part structure is a prompt convention; callers must not assume
// machine-parseable sections.
func (s *Service) ExplainDocument(ctx context.Context, documentText string) (string, error) {
	out, err := invoke[ExplainInput, explainOutput](ctx, s, llm.ExplainPrompt, ExplainInput{DocumentText: documentText})
	if err != nil {
		return "", err
	}
	return out.Explanation, nil
}

// QuestionsInput is the input contract of the question-generation flow.
type QuestionsInput struct {
	DocumentText string
}

// Validate enforces the question-generation input contract.
func (in QuestionsInput) Validate() error {
	if strings.TrimSpace(in.DocumentText) == "" {
		return errors.New("documentText must not be empty")
	}
	return nil
}

type questionsOutput struct {
	Questions []string `json:"questions"`
}

// GenerateDoctorQuestions produces clarifying questions from document text.
// The 3-5 count is a prompt instruction; whatever the model returns is kept,
// minus blank entries.
func (s *Service) GenerateDoctorQuestions(ctx context.Context, documentText string) ([]string, error) {
	out, err := invoke[QuestionsInput, questionsOutput](ctx, s, llm.QuestionsPrompt, QuestionsInput{DocumentText: documentText})
	if err != nil {
		return nil, err
	}
	questions := make([]string, 0, len(out.Questions))
	for _, q := range out.Questions {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			questions = append(questions, trimmed)
		}
	}
	return questions, nil
}

// TermInput is the input contract of the term-explanation flow. Context is
// optional; when empty, the rendered prompt omits the context clause entirely.
type TermInput struct {
	Term    string
	Context string
}

// Validate enforces the term-explanation input contract.
func (in TermInput) Validate() error {
	if strings.TrimSpace(in.Term) == "" {
		return errors.New("term must not be empty")
	}
	return nil
}

// ExplainMedicalTerm explains a single term, optionally given surrounding context.
func (s *Service) ExplainMedicalTerm(ctx context.Context, term, termContext string) (string, error) {
	out, err := invoke[TermInput, explainOutput](ctx, s, llm.TermPrompt, TermInput{Term: term, Context: termContext})
	if err != nil {
		return "", err
	}
	return out.Explanation, nil
}

func invoke[I any, O any](ctx context.Context, s *Service, p *llm.Prompt, in I) (O, error) {
	out, err := llm.Invoke[I, O](ctx, s.LLM, p, in)
	if err != nil {
		metrics.IncFlowInvocation(p.Name, "error")
		return out, err
	}
	metrics.IncFlowInvocation(p.Name, "ok")
	return out, nil
}
