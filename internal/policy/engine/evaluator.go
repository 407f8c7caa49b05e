// Package engine evaluates file-access policies with OPA Rego.
package engine

import (
	"context"

	"chat-server/backend/internal/identity/domain"
)

// Evaluator decides whether an identity may read files stored under a workspace.
// It satisfies filestore.AccessPolicy.
type Evaluator interface {
	AllowWorkspace(ctx context.Context, id domain.Identity, workspaceID int64) (bool, error)
}
