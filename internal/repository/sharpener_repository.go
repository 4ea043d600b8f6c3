package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/skate-ticket-service/internal/model"
)

// SharpenerRepo provides access to the `sharpeners` table.
type SharpenerRepo struct{ db *sql.DB }

func NewSharpenerRepo(db *sql.DB) *SharpenerRepo { return &SharpenerRepo{db: db} }

// Create inserts a sharpener and returns its ID.  Duplicate-key errors are
// mapped to ErrUsernameExists or ErrEmailExists depending on which unique
// index was hit.
func (r *SharpenerRepo) Create(ctx context.Context, s *model.Sharpener) (uint64, error) {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Username = strings.TrimSpace(s.Username)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sharpeners (name, email, phone, username, password_hash) VALUES (?,?,?,?,?)`,
		s.Name, s.Email, s.Phone, s.Username, s.PasswordHash)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "username") {
				return 0, ErrUsernameExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.ID = uint64(id)
	return s.ID, nil
}

// GetByUsername fetches a sharpener by login handle.
func (r *SharpenerRepo) GetByUsername(ctx context.Context, username string) (model.Sharpener, error) {
	var s model.Sharpener
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, username, password_hash, is_active, created_at
		 FROM sharpeners WHERE username = ? LIMIT 1`,
		strings.TrimSpace(username)).
		Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Username, &s.PasswordHash, &s.IsActive, &s.CreatedAt)
	return s, err
}

// GetByID fetches a sharpener by primary key.
func (r *SharpenerRepo) GetByID(ctx context.Context, id uint64) (model.Sharpener, error) {
	var s model.Sharpener
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, username, password_hash, is_active, created_at
		 FROM sharpeners WHERE id = ? LIMIT 1`, id).
		Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Username, &s.PasswordHash, &s.IsActive, &s.CreatedAt)
	return s, err
}

// EmailExists reports whether a sharpener account uses the email.
func (r *SharpenerRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sharpeners WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	return n > 0, err
}
