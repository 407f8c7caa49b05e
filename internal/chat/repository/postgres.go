package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgtype"

	"chat-server/backend/internal/chat/domain"
)

const chatColumns = `id, ws_id, name, type, members, created_at`

// PostgresRepository implements Repository on database/sql with the pgx driver. Array columns
// are scanned through a pgtype.Map.
type PostgresRepository struct {
	db   *sql.DB
	tmap *pgtype.Map
}

// NewPostgresRepository returns a chat repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, tmap: pgtype.NewMap()}
}

// IsChatMember reports whether userID is listed in the members of chatID. An unknown chat is
// not an error; it has no members.
func (r *PostgresRepository) IsChatMember(ctx context.Context, chatID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM chats WHERE id = $1 AND $2 = ANY(members))`,
		chatID, userID,
	).Scan(&ok)
	return ok, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanChat(row rowScanner) (*domain.Chat, error) {
	var c domain.Chat
	var name sql.NullString
	var typ string
	if err := row.Scan(&c.ID, &c.WorkspaceID, &name, &typ, r.tmap.SQLScanner(&c.Members), &c.CreatedAt); err != nil {
		return nil, err
	}
	if name.Valid {
		c.Name = &name.String
	}
	c.Type = domain.ChatType(typ)
	return &c, nil
}

// GetByID returns the chat, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	c, err := r.scanChat(r.db.QueryRowContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// ListByWorkspace returns every chat of workspaceID ordered by id.
func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.Chat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE ws_id = $1 ORDER BY id`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Chat{}
	for rows.Next() {
		c, err := r.scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Create inserts c and fills in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Chat) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO chats (ws_id, name, type, members)
		 VALUES ($1, $2, $3::chat_type, $4)
		 RETURNING id, created_at`,
		c.WorkspaceID, c.Name, string(c.Type), c.Members,
	).Scan(&c.ID, &c.CreatedAt)
}

// Update replaces name and members of chat id inside workspaceID.
func (r *PostgresRepository) Update(ctx context.Context, workspaceID, id int64, name *string, members []int64) (*domain.Chat, error) {
	c, err := r.scanChat(r.db.QueryRowContext(ctx,
		`UPDATE chats SET name = $3, members = $4
		 WHERE id = $1 AND ws_id = $2
		 RETURNING `+chatColumns,
		id, workspaceID, name, members))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// Delete removes chat id inside workspaceID. Its messages go with it.
func (r *PostgresRepository) Delete(ctx context.Context, workspaceID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = $1 AND ws_id = $2`, id, workspaceID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CreateMessage inserts m and fills in ID and CreatedAt.
func (r *PostgresRepository) CreateMessage(ctx context.Context, m *domain.Message) error {
	files := m.Files
	if files == nil {
		files = []string{}
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, content, files)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		m.ChatID, m.SenderID, m.Content, files,
	).Scan(&m.ID, &m.CreatedAt)
}

// ListMessages pages backwards through chatID by id.
func (r *PostgresRepository) ListMessages(ctx context.Context, chatID, beforeID int64, limit int) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, sender_id, content, files, created_at
		 FROM messages
		 WHERE chat_id = $1 AND id < $2
		 ORDER BY id DESC
		 LIMIT $3`,
		chatID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, r.tmap.SQLScanner(&m.Files), &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
