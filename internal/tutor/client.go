package tutor

import (
	"context"

	"github.com/abhisek/mathstep/internal/llm"
)

// PurposeSolve labels solve requests in the LLM event log.
const PurposeSolve = "solve"

// ModelClient sends a prompt and returns the raw reply text.
type ModelClient interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// ClientFunc adapts a function to ModelClient.
type ClientFunc func(ctx context.Context, p Prompt) (string, error)

func (f ClientFunc) Generate(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// ClientOptions tunes NewLLMClient.
type ClientOptions struct {
	// Structured asks the provider for schema-constrained JSON instead of
	// relying on the system instruction alone.
	Structured bool

	MaxTokens   int
	Temperature float64
}

// LLMClient is a ModelClient over an llm.Provider stack.
type LLMClient struct {
	provider llm.Provider
	opts     ClientOptions
}

// NewLLMClient wraps provider. A zero MaxTokens defaults to 8192; worked
// solutions in Thai run long.
func NewLLMClient(provider llm.Provider, opts ClientOptions) *LLMClient {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8192
	}
	return &LLMClient{provider: provider, opts: opts}
}

func (c *LLMClient) Generate(ctx context.Context, p Prompt) (string, error) {
	msg := llm.Message{Role: llm.RoleUser, Content: p.Text}
	if p.Image != nil {
		msg.Images = []llm.Image{{MIMEType: p.Image.MIMEType, Data: p.Image.Data}}
	}

	req := llm.Request{
		System:      p.System,
		Messages:    []llm.Message{msg},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	}
	if c.opts.Structured {
		req.Schema = SolutionSchema
	}

	resp, err := c.provider.Generate(llm.WithPurpose(ctx, PurposeSolve), req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// ModelID reports the underlying provider's model.
func (c *LLMClient) ModelID() string {
	return c.provider.ModelID()
}
