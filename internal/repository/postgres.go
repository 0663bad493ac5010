package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"simple-todo/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    username VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS todos (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users (id),
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS todos_user_id_created_at_idx ON todos (user_id, created_at);
`

// CreateTableIfNotExists applies the schema. It is idempotent.
func CreateTableIfNotExists(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}
	return nil
}

// DeleteAllTable drops every table owned by the application.
func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
    DROP TABLE IF EXISTS todos;
    DROP TABLE IF EXISTS users;
    `); err != nil {
		return fmt.Errorf("error deleting tables: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// validUUID guards queries against ids that Postgres would reject with a
// cast error instead of simply matching nothing.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// PostgresUserStore handles users rows.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password) VALUES ($1, $2, $3)",
		u.ID, u.Username, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("postgres insert user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.queryOne(ctx, "SELECT id, username, password FROM users WHERE username = $1", username)
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	if !validUUID(id) {
		return models.User{}, ErrNotFound
	}
	return s.queryOne(ctx, "SELECT id, username, password FROM users WHERE id = $1", id)
}

func (s *PostgresUserStore) queryOne(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("postgres find user: %w", err)
	}
	return u, nil
}

const todoColumns = "id, user_id, title, description, completed, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

// PostgresTaskStore handles todos rows.
type PostgresTaskStore struct {
	db *sql.DB
}

func NewPostgresTaskStore(db *sql.DB) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

func (s *PostgresTaskStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	tasks := []models.Task{}
	if !validUUID(ownerID) {
		return tasks, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE user_id = $1 ORDER BY created_at, id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("postgres list todos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres scan todo: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres iterate todos: %w", err)
	}
	return tasks, nil
}

func (s *PostgresTaskStore) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO todos ("+todoColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		t.ID, t.OwnerID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("postgres insert todo: %w", err)
	}
	return t, nil
}

func (s *PostgresTaskStore) Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (models.Task, error) {
	if !validUUID(id) || !validUUID(ownerID) {
		return models.Task{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE todos
		SET title = COALESCE($3, title),
			description = COALESCE($4, description),
			completed = COALESCE($5, completed),
			updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING `+todoColumns,
		id, ownerID, patch.Title, patch.Description, patch.Completed, patch.UpdatedAt,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("postgres update todo: %w", err)
	}
	return t, nil
}

func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, id string) (models.Task, error) {
	if !validUUID(id) || !validUUID(ownerID) {
		return models.Task{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		"DELETE FROM todos WHERE id = $1 AND user_id = $2 RETURNING "+todoColumns, id, ownerID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("postgres delete todo: %w", err)
	}
	return t, nil
}
