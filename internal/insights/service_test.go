package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/flows"
	"medisafe-backend/internal/shared/storage/object/local"
)

type fakeCompleter struct {
	explainResp   string
	questionsResp string
	termResp      string
	explainErr    error
	questionsErr  error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, `{"questions"`):
		if f.questionsErr != nil {
			return "", f.questionsErr
		}
		return f.questionsResp, nil
	case strings.Contains(prompt, "medical term"):
		return f.termResp, nil
	default:
		if f.explainErr != nil {
			return "", f.explainErr
		}
		return f.explainResp, nil
	}
}

func newTestService(t *testing.T, fake *fakeCompleter) (*Service, *documents.Service) {
	t.Helper()
	store := local.New(t.TempDir(), "http://localhost:8080")
	docs := documents.NewService(store, documents.NewMemoryRepo())
	return NewService(flows.NewService(fake), docs), docs
}

func seedDocument(t *testing.T, docs *documents.Service, content string) documents.Document {
	t.Helper()
	doc, err := docs.Create(context.Background(), documents.Document{
		UserID:  "user-1",
		Name:    "bloodtest.txt",
		Type:    flows.TypeLabReport,
		Content: content,
	})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc
}

func TestExplainRunsBothFlows(t *testing.T) {
	svc, docs := newTestService(t, &fakeCompleter{
		explainResp:   `{"explanation":"Your counts look normal."}`,
		questionsResp: `{"questions":["Is my iron level fine?","Do I need a follow-up?"]}`,
	})
	doc := seedDocument(t, docs, "Hemoglobin 13.5 g/dL")

	out, err := svc.Explain(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if out.Explanation != "Your counts look normal." {
		t.Fatalf("unexpected explanation %q", out.Explanation)
	}
	if len(out.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(out.Questions))
	}
}

func TestExplainFailsIfEitherFlowFails(t *testing.T) {
	svc, docs := newTestService(t, &fakeCompleter{
		explainResp:  `{"explanation":"ok"}`,
		questionsErr: fmt.Errorf("model unavailable"),
	})
	doc := seedDocument(t, docs, "some content")

	if _, err := svc.Explain(context.Background(), "user-1", doc.ID); err == nil {
		t.Fatal("expected error when questions flow fails")
	}

	svc2, docs2 := newTestService(t, &fakeCompleter{
		explainErr:    fmt.Errorf("model unavailable"),
		questionsResp: `{"questions":["q"]}`,
	})
	doc2 := seedDocument(t, docs2, "some content")
	if _, err := svc2.Explain(context.Background(), "user-1", doc2.ID); err == nil {
		t.Fatal("expected error when explain flow fails")
	}
}

func TestExplainUnknownDocument(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompleter{})

	_, err := svc.Explain(context.Background(), "user-1", "missing")
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExplainRejectsDocumentWithoutContent(t *testing.T) {
	svc, docs := newTestService(t, &fakeCompleter{})
	doc := seedDocument(t, docs, "   ")

	_, err := svc.Explain(context.Background(), "user-1", doc.ID)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestExplainIsOwnershipScoped(t *testing.T) {
	svc, docs := newTestService(t, &fakeCompleter{
		explainResp:   `{"explanation":"ok"}`,
		questionsResp: `{"questions":["q"]}`,
	})
	doc := seedDocument(t, docs, "content")

	_, err := svc.Explain(context.Background(), "user-2", doc.ID)
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestExplainTermWithoutDocument(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompleter{
		termResp: `{"explanation":"HDL is the good cholesterol."}`,
	})

	got, err := svc.ExplainTerm(context.Background(), "user-1", "HDL", "")
	if err != nil {
		t.Fatalf("term: %v", err)
	}
	if got != "HDL is the good cholesterol." {
		t.Fatalf("unexpected explanation %q", got)
	}
}

func TestExplainTermRequiresTerm(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompleter{})

	_, err := svc.ExplainTerm(context.Background(), "user-1", "  ", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExplainTermUsesDocumentContext(t *testing.T) {
	fake := &fakeCompleter{termResp: `{"explanation":"ok"}`}
	svc, docs := newTestService(t, fake)
	doc := seedDocument(t, docs, "lipid panel: HDL 62 mg/dL")

	if _, err := svc.ExplainTerm(context.Background(), "user-1", "HDL", doc.ID); err != nil {
		t.Fatalf("term with document: %v", err)
	}
}
