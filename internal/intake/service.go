package intake

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/extract"
	"medisafe-backend/internal/flows"
)

// Request is a document submitted for processing. Content is either a data
// URI ("data:<mime>;base64,<payload>") or a bare base64 string.
type Request struct {
	UserID   string
	FileName string
	MimeType string
	Content  string
}

// Result is the processed document plus the decoded bytes for storage.
type Result struct {
	Document documents.Document
	Raw      []byte
}

// Service turns an uploaded payload into a classified, summarized document.
// It does not persist anything; the caller owns storage.
type Service struct {
	Flows *flows.Service
}

// NewService constructs an intake service.
func NewService(fl *flows.Service) *Service {
	return &Service{Flows: fl}
}

// Process decodes the payload, extracts text, then runs classification and
// summarization concurrently. Both flows must succeed; a failure in either
// fails the whole intake.
func (s *Service) Process(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Result{}, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if strings.TrimSpace(req.FileName) == "" {
		return Result{}, fmt.Errorf("%w: fileName is required", ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return Result{}, fmt.Errorf("%w: content is required", ErrValidation)
	}

	raw, mimeType, err := decodeContent(req.Content, req.MimeType)
	if err != nil {
		return Result{}, err
	}

	text, err := extract.TextFromBytes(raw, mimeType)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("%w: document contains no extractable text", ErrDecode)
	}

	var (
		docType flows.DocumentType
		summary string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.Flows.ClassifyDocument(gctx, text)
		if err != nil {
			return fmt.Errorf("classify: %w", err)
		}
		docType = t
		return nil
	})
	g.Go(func() error {
		sum, err := s.Flows.SummarizeDocument(gctx, text)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		summary = sum
		return nil
	})
	if err := g.Wait(); err != nil {
		// Keep the flow error in the chain so handlers can tell an
		// unconfigured client apart from a failed invocation.
		return Result{}, fmt.Errorf("%w: %w", ErrAIProcessing, err)
	}

	now := time.Now().UTC()
	doc := documents.Document{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Name:       req.FileName,
		Type:       docType,
		Summary:    summary,
		Content:    text,
		UploadDate: now.Truncate(24 * time.Hour),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return Result{Document: doc, Raw: raw}, nil
}

// decodeContent strips an optional data-URI prefix and base64-decodes the
// payload. The mime type embedded in the URI wins over the declared one.
func decodeContent(content, declaredMime string) ([]byte, string, error) {
	payload := content
	mimeType := strings.TrimSpace(declaredMime)

	if strings.HasPrefix(content, "data:") {
		comma := strings.IndexByte(content, ',')
		if comma < 0 {
			return nil, "", fmt.Errorf("%w: malformed data URI", ErrDecode)
		}
		header := content[len("data:"):comma]
		payload = content[comma+1:]
		if semi := strings.IndexByte(header, ';'); semi >= 0 {
			header = header[:semi]
		}
		if header != "" {
			mimeType = header
		}
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrDecode)
	}
	return raw, mimeType, nil
}
