package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/skate-ticket-service/internal/model"
)

// InvitationRepo provides access to the `invitations` table.
type InvitationRepo struct{ db *sql.DB }

func NewInvitationRepo(db *sql.DB) *InvitationRepo { return &InvitationRepo{db: db} }

// Create inserts an invitation.  A duplicate email returns
// ErrInvitationExists.
func (r *InvitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (email, token, expires_at) VALUES (?,?,?)`,
		inv.Email, inv.Token, inv.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrInvitationExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	inv.ID = uint64(id)
	return nil
}

// GetByToken returns the invitation carrying the token, or sql.ErrNoRows.
func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (model.Invitation, error) {
	var inv model.Invitation
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, token, used, created_at, expires_at
		 FROM invitations WHERE token = ? LIMIT 1`, token).
		Scan(&inv.ID, &inv.Email, &inv.Token, &inv.Used, &inv.CreatedAt, &inv.ExpiresAt)
	return inv, err
}

// MarkUsed consumes an invitation.  The used guard makes acceptance
// single-shot: a second concurrent accept matches zero rows and gets
// ErrInvalidTransition.
func (r *InvitationRepo) MarkUsed(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET used = 1 WHERE id = ? AND used = 0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// Expired reports whether the invitation can no longer be accepted.
func Expired(inv model.Invitation, now time.Time) bool {
	return inv.Used || now.UTC().After(inv.ExpiresAt)
}
