package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/flows"
	"medisafe-backend/internal/shared/storage/object/local"
)

type scriptedCompleter struct {
	classifyResp  string
	summarizeResp string
}

func (f *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, `{"documentType"`) {
		return f.classifyResp, nil
	}
	return f.summarizeResp, nil
}

func newTestRouter(t *testing.T, fake *scriptedCompleter) (*gin.Engine, *documents.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := local.New(t.TempDir(), "http://localhost:8080")
	docs := documents.NewService(store, documents.NewMemoryRepo())
	intakeSvc := NewService(flows.NewService(fake))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(intakeSvc, docs).RegisterRoutes(api)
	documents.NewHandler(docs).RegisterRoutes(api)
	return router, docs
}

func postProcess(t *testing.T, router *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestProcessEndpointCreatesDocumentWithFile(t *testing.T) {
	router, _ := newTestRouter(t, &scriptedCompleter{
		classifyResp:  `{"documentType":"Lab Report"}`,
		summarizeResp: `{"summary":"Everything in range."}`,
	})

	content := "Hemoglobin: 13.5 g/dL"
	resp := postProcess(t, router, map[string]string{
		"fileName": "bloodtest.txt",
		"mimeType": "text/plain",
		"content":  base64.StdEncoding.EncodeToString([]byte(content)),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		ID           string `json:"id"`
		DocumentType string `json:"documentType"`
		Summary      string `json:"summary"`
		Content      string `json:"content"`
		File         *struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"file"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.DocumentType != "Lab Report" {
		t.Fatalf("expected Lab Report, got %q", created.DocumentType)
	}
	if created.Summary != "Everything in range." {
		t.Fatalf("unexpected summary %q", created.Summary)
	}
	if created.Content != content {
		t.Fatalf("expected content round-trip, got %q", created.Content)
	}
	if created.File == nil || created.File.ID == "" {
		t.Fatal("expected joined file in response")
	}

	// The document is visible through the listing endpoint.
	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, listReq)
	if listResp.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", listResp.Code)
	}
	var listed []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(listResp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected created document listed, got %v", listed)
	}
}

func TestProcessEndpointRejectsMissingContent(t *testing.T) {
	router, _ := newTestRouter(t, &scriptedCompleter{})

	resp := postProcess(t, router, map[string]string{
		"fileName": "empty.txt",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestProcessEndpointRejectsUndecodablePayload(t *testing.T) {
	router, _ := newTestRouter(t, &scriptedCompleter{})

	resp := postProcess(t, router, map[string]string{
		"fileName": "broken.bin",
		"content":  "!!!not base64!!!",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "decode_error") {
		t.Fatalf("expected decode_error code, got %s", resp.Body.String())
	}
}
