package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"chat-server/backend/internal/user/domain"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository on database/sql with the pgx driver.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByEmail returns the user for email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, ws_id, fullname, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.WorkspaceID, &u.FullName, &u.Email, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.PasswordHash = hash.String
	return &u, nil
}

// Create runs in one transaction: find or create the workspace, insert the user, and claim
// ownership of a workspace that has none.
func (r *PostgresRepository) Create(ctx context.Context, in domain.CreateUser, passwordHash string) (*domain.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ws, err := findOrCreateWorkspace(ctx, tx, in.Workspace)
	if err != nil {
		return nil, fmt.Errorf("workspace %q: %w", in.Workspace, err)
	}

	u := domain.User{WorkspaceID: ws.ID, FullName: in.FullName, Email: in.Email}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (ws_id, fullname, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		ws.ID, in.FullName, in.Email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if ws.OwnerID == 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE workspaces SET owner_id = $1 WHERE id = $2 AND owner_id = 0`, u.ID, ws.ID,
		); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &u, nil
}

func findOrCreateWorkspace(ctx context.Context, tx *sql.Tx, name string) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := tx.QueryRowContext(ctx,
		`INSERT INTO workspaces (name, owner_id) VALUES ($1, 0)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, owner_id, created_at`,
		name,
	).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// ListByWorkspace returns every user of workspaceID ordered by id.
func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.ChatUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, fullname, email FROM users WHERE ws_id = $1 ORDER BY id`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.ChatUser{}
	for rows.Next() {
		var u domain.ChatUser
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountInWorkspace counts the distinct ids that are users of workspaceID.
func (r *PostgresRepository) CountInWorkspace(ctx context.Context, workspaceID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE ws_id = $1 AND id = ANY($2)`,
		workspaceID, ids,
	).Scan(&n)
	return n, err
}
