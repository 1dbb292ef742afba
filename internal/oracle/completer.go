package oracle

import "context"

// CompletionRequest is a single system+user exchange with a chat model.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool
}

// Completer is the provider-specific transport used by Oracle.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
