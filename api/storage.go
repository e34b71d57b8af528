package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func openDB(cfg config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id            text PRIMARY KEY,
	created_at    timestamptz NOT NULL DEFAULT now(),
	updated_at    timestamptz NOT NULL DEFAULT now(),
	fullname      text NOT NULL,
	username      text NOT NULL UNIQUE,
	password_hash bytea NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          text PRIMARY KEY,
	user_id     text NOT NULL,
	title       text NOT NULL,
	description text NOT NULL DEFAULT '',
	completed   boolean NOT NULL DEFAULT false,
	due_date    timestamptz,
	category    text NOT NULL DEFAULT 'work',
	created_at  timestamptz NOT NULL DEFAULT now(),
	updated_at  timestamptz NOT NULL DEFAULT now()
);`

func ensureSchema(db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}

type storage struct {
	db *sqlx.DB
}

func newStorage(db *sqlx.DB) *storage {
	return &storage{db: db}
}

const taskColumns = "id, user_id, title, description, completed, due_date, category, created_at, updated_at"

func (s *storage) getUserByUsername(username string) (*user, error) {
	query := `SELECT id, created_at, updated_at, fullname, username, password_hash
			  FROM users
			  WHERE username = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var u user
	err := s.db.GetContext(ctx, &u, query, username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) getUserByID(id string) (*user, error) {
	query := `SELECT id, created_at, updated_at, fullname, username, password_hash
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var u user
	err := s.db.GetContext(ctx, &u, query, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) insertUser(u *user) error {
	u.ID = uuid.NewString()
	query := `INSERT INTO users (id, fullname, username, password_hash)
			  VALUES ($1, $2, $3, $4)
			  RETURNING created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowxContext(ctx, query, u.ID, u.FullName, u.Username, u.PasswordHash)
	return row.Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (s *storage) insertTask(t *task) error {
	t.ID = uuid.NewString()
	query := `INSERT INTO tasks (id, user_id, title, description, completed, due_date, category)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowxContext(ctx, query, t.ID, t.UserID, t.Title, t.Description, t.Completed, t.DueDate, t.Category)
	return row.Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *storage) getTaskByID(id string) (*task, error) {
	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var t task
	err := s.db.GetContext(ctx, &t, query, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *storage) getTasksByUser(userID string) ([]task, error) {
	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_id = $1
			  ORDER BY created_at`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var tasks []task
	err := s.db.SelectContext(ctx, &tasks, query, userID)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// updateTask applies a sparse field patch and returns the post-update row,
// or nil when no task has the given id.
func (s *storage) updateTask(id string, fields map[string]any) (*task, error) {
	query, args, err := sq.Update("tasks").
		SetMap(fields).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + taskColumns).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var t task
	err = s.db.QueryRowxContext(ctx, query, args...).StructScan(&t)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *storage) setTaskCompleted(id string, completed bool) (*task, error) {
	query := `UPDATE tasks SET completed = $1, updated_at = now()
			  WHERE id = $2
			  RETURNING ` + taskColumns
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var t task
	err := s.db.QueryRowxContext(ctx, query, completed, id).StructScan(&t)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *storage) deleteTask(id string) (bool, error) {
	query := `DELETE FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
