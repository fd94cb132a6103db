package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Completer abstracts a remote text-generation capability. Implementations
// are expected to return a single JSON object as the raw response body.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrSchemaValidation means the input failed validation before any remote call.
	ErrSchemaValidation = errors.New("prompt input failed validation")
	// ErrOutputParse means the remote response could not be coerced to the output type.
	ErrOutputParse = errors.New("prompt output could not be parsed")
	// ErrNotConfigured is returned by the placeholder client.
	ErrNotConfigured = errors.New("llm client not configured")
)

// Validator is implemented by flow inputs and outputs that carry constraints.
type Validator interface {
	Validate() error
}

// Invoke renders the prompt with the given input, sends it, and decodes the
// JSON response into O. The input is validated before anything is sent; the
// output is validated after decoding. Exactly one outbound call is made per
// invocation (the transport may perform a parse-repair pass internally).
func Invoke[I any, O any](ctx context.Context, c Completer, p *Prompt, in I) (O, error) {
	var out O

	if v, ok := any(in).(Validator); ok {
		if err := v.Validate(); err != nil {
			return out, fmt.Errorf("%w: %s: %s", ErrSchemaValidation, p.Name, err)
		}
	}

	rendered, err := p.Render(in)
	if err != nil {
		return out, fmt.Errorf("render prompt %s: %w", p.Name, err)
	}

	raw, err := c.Complete(ctx, rendered)
	if err != nil {
		return out, fmt.Errorf("invoke %s: %w", p.Name, err)
	}

	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("%w: %s: %s", ErrOutputParse, p.Name, err)
	}
	if v, ok := any(out).(Validator); ok {
		if err := v.Validate(); err != nil {
			return out, fmt.Errorf("%w: %s: %s", ErrOutputParse, p.Name, err)
		}
	}
	return out, nil
}

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

var _ Completer = PlaceholderClient{}
