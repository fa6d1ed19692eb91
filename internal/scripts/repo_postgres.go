package scripts

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo reads scripts from the durable store.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Script, bool, error) {
	var s Script
	var system, content sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, system_message, content, created_at
		FROM scripts
		WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &system, &content, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Script{}, false, nil
	}
	if err != nil {
		return Script{}, false, err
	}
	s.SystemMessage = system.String
	s.Content = content.String
	return s, true, nil
}
