package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/flows"
)

var (
	// ErrInvalidInput indicates missing request fields.
	ErrInvalidInput = errors.New("invalid insights request")

	// ErrNoContent indicates the document has no stored text to analyze.
	ErrNoContent = errors.New("document has no extractable content")
)

// Explanation bundles the plain-language explanation with suggested doctor
// questions for a document.
type Explanation struct {
	Explanation string
	Questions   []string
}

// Service produces patient-facing insights over stored documents.
type Service struct {
	Flows *flows.Service
	Docs  *documents.Service
}

// NewService constructs an insights service.
func NewService(fl *flows.Service, docs *documents.Service) *Service {
	return &Service{Flows: fl, Docs: docs}
}

// Explain generates a plain-language explanation and doctor questions for a
// document concurrently. Both must succeed.
func (s *Service) Explain(ctx context.Context, userId, documentId string) (Explanation, error) {
	text, err := s.documentText(ctx, userId, documentId)
	if err != nil {
		return Explanation{}, err
	}

	var out Explanation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		expl, err := s.Flows.ExplainDocument(gctx, text)
		if err != nil {
			return fmt.Errorf("explain: %w", err)
		}
		out.Explanation = expl
		return nil
	})
	g.Go(func() error {
		qs, err := s.Flows.GenerateDoctorQuestions(gctx, text)
		if err != nil {
			return fmt.Errorf("questions: %w", err)
		}
		out.Questions = qs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Explanation{}, err
	}
	return out, nil
}

// Questions generates suggested doctor questions for a document.
func (s *Service) Questions(ctx context.Context, userId, documentId string) ([]string, error) {
	text, err := s.documentText(ctx, userId, documentId)
	if err != nil {
		return nil, err
	}
	return s.Flows.GenerateDoctorQuestions(ctx, text)
}

// ExplainTerm explains a medical term, optionally in the context of one of
// the user's documents.
func (s *Service) ExplainTerm(ctx context.Context, userId, term, documentId string) (string, error) {
	if strings.TrimSpace(term) == "" {
		return "", fmt.Errorf("%w: term is required", ErrInvalidInput)
	}

	var docContext string
	if strings.TrimSpace(documentId) != "" {
		text, err := s.documentText(ctx, userId, documentId)
		if err != nil {
			return "", err
		}
		docContext = text
	}
	return s.Flows.ExplainMedicalTerm(ctx, term, docContext)
}

func (s *Service) documentText(ctx context.Context, userId, documentId string) (string, error) {
	if strings.TrimSpace(documentId) == "" {
		return "", fmt.Errorf("%w: documentId is required", ErrInvalidInput)
	}
	doc, err := s.Docs.Get(ctx, userId, documentId)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return "", ErrNoContent
	}
	return doc.Content, nil
}
