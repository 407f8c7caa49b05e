package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"

	"chat-server/backend/internal/identity/domain"
)

// FileAccessQuery is the rule every file-access policy must define.
const FileAccessQuery = "data.chat.file_access.allow"

// DefaultFileAccessPolicy allows an identity to read only its own workspace's files.
const DefaultFileAccessPolicy = `package chat.file_access

default allow := false

allow if {
	input.identity.ws_id == input.workspace_id
}
`

// OPAEvaluator evaluates a prepared Rego file-access query. Safe for concurrent use.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles module (DefaultFileAccessPolicy when empty) and prepares FileAccessQuery.
func NewOPAEvaluator(ctx context.Context, module string) (*OPAEvaluator, error) {
	if strings.TrimSpace(module) == "" {
		module = DefaultFileAccessPolicy
	}
	q, err := rego.New(
		rego.Query(FileAccessQuery),
		rego.Module("file_access.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile file access policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// LoadOPAEvaluator reads a Rego module from path, or uses the default policy when path is empty.
func LoadOPAEvaluator(ctx context.Context, path string) (*OPAEvaluator, error) {
	if path == "" {
		return NewOPAEvaluator(ctx, "")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file access policy: %w", err)
	}
	log.Printf("policy: loaded file access policy from %s", path)
	return NewOPAEvaluator(ctx, string(src))
}

// AllowWorkspace evaluates the policy for id reading workspaceID. An undefined result is a deny.
func (e *OPAEvaluator) AllowWorkspace(ctx context.Context, id domain.Identity, workspaceID int64) (bool, error) {
	input := map[string]interface{}{
		"identity": map[string]interface{}{
			"id":    id.ID,
			"ws_id": id.WorkspaceID,
			"email": id.Email,
		},
		"workspace_id": workspaceID,
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("eval file access policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, errors.New("file access policy returned a non-boolean")
	}
	return allowed, nil
}

// HealthCheck evaluates a same-workspace request and expects it to be allowed.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	ok, err := e.AllowWorkspace(ctx, domain.Identity{ID: 1, WorkspaceID: 1}, 1)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("file access policy denies same-workspace access")
	}
	return nil
}
