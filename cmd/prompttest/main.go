package main

// Run a single AI flow against a local document without starting the server:
//   go run ./cmd/prompttest -doc testdata/bloodtest.pdf -flow summarize

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"medisafe-backend/internal/extract"
	"medisafe-backend/internal/flows"
	openai "medisafe-backend/internal/llm/openai"
	"medisafe-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	docPath := flag.String("doc", "", "Path to document file (pdf or txt)")
	flow := flag.String("flow", "summarize", "Flow to run: classify, summarize, explain, questions, term")
	term := flag.String("term", "", "Medical term (required for -flow term)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), *model)
	if err != nil {
		exitErr(err.Error())
	}
	svc := flows.NewService(client)
	ctx := context.Background()

	text := ""
	if strings.TrimSpace(*docPath) != "" {
		raw, err := os.ReadFile(*docPath)
		if err != nil {
			exitErr(fmt.Sprintf("read document: %v", err))
		}
		text, err = extract.TextFromBytes(raw, mimeFromExt(*docPath))
		if err != nil {
			exitErr(fmt.Sprintf("extract text: %v", err))
		}
	}

	var result any
	switch *flow {
	case "classify":
		result, err = svc.ClassifyDocument(ctx, text)
	case "summarize":
		result, err = svc.SummarizeDocument(ctx, text)
	case "explain":
		result, err = svc.ExplainDocument(ctx, text)
	case "questions":
		result, err = svc.GenerateDoctorQuestions(ctx, text)
	case "term":
		if strings.TrimSpace(*term) == "" {
			exitErr("-term is required for the term flow")
		}
		result, err = svc.ExplainMedicalTerm(ctx, *term, text)
	default:
		exitErr(fmt.Sprintf("unknown flow %q", *flow))
	}
	if err != nil {
		exitErr(err.Error())
	}

	out, err := json.MarshalIndent(map[string]any{"flow": *flow, "result": result}, "", "  ")
	if err != nil {
		exitErr(err.Error())
	}
	fmt.Println(string(out))
}

func mimeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	default:
		return "text/plain"
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, "error:", msg)
	os.Exit(1)
}
