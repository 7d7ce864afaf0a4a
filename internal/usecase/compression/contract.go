package compression

import "context"

// Completer sends a single chat exchange to a language model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
