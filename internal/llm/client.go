package llm

import (
	"context"
)

// Client generates free-form text from a prompt. The quiz engine treats the
// provider as an opaque collaborator that may fail.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
