package llm

import "context"

// Provider defines the interface for generation backends. Implementations
// handle protocol-specific details such as request formatting, authentication,
// and structured-output enforcement.
type Provider interface {
	// Generate sends a single generation request and returns the full response.
	// When req.Schema is set, Response.Text should be JSON conforming to the
	// schema, but callers must tolerate non-conformant output.
	Generate(ctx context.Context, req *Request) (*Response, error)
}
