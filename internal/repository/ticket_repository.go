package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/skate-ticket-service/internal/model"
)

// TicketRepo provides persistence for tickets.  Every lifecycle transition
// is expressed as a single UPDATE guarded by the required prior status (and,
// where ownership matters, the current claimant), checked by the affected
// row count.  Two concurrent conflicting requests therefore race at the
// storage layer and exactly one wins; the loser observes
// ErrInvalidTransition without any partial write.  All timestamps are UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle for callers that need transactions.
func (r *TicketRepo) DB() *sql.DB { return r.db }

const ticketColumns = `id, code, customer_name, customer_phone, brand, color, size, price_dkk,
	status, payment_ref, claimed_by_id, sharpened_by_id, cancelled_by_id,
	created_at, paid_at, started_at, completed_at, cancelled_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (model.Ticket, error) {
	var (
		t           model.Ticket
		paymentRef  sql.NullString
		claimedBy   sql.NullInt64
		sharpenedBy sql.NullInt64
		cancelledBy sql.NullInt64
		paidAt      sql.NullTime
		startedAt   sql.NullTime
		completedAt sql.NullTime
		cancelledAt sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Code, &t.CustomerName, &t.CustomerPhone, &t.Brand, &t.Color, &t.Size, &t.PriceDKK,
		&t.Status, &paymentRef, &claimedBy, &sharpenedBy, &cancelledBy,
		&t.CreatedAt, &paidAt, &startedAt, &completedAt, &cancelledAt,
	)
	if err != nil {
		return model.Ticket{}, err
	}
	if paymentRef.Valid {
		v := paymentRef.String
		t.PaymentRef = &v
	}
	if claimedBy.Valid {
		v := uint64(claimedBy.Int64)
		t.ClaimedBy = &v
	}
	if sharpenedBy.Valid {
		v := uint64(sharpenedBy.Int64)
		t.SharpenedBy = &v
	}
	if cancelledBy.Valid {
		v := uint64(cancelledBy.Int64)
		t.CancelledBy = &v
	}
	if paidAt.Valid {
		v := paidAt.Time.UTC()
		t.PaidAt = &v
	}
	if startedAt.Valid {
		v := startedAt.Time.UTC()
		t.StartedAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time.UTC()
		t.CompletedAt = &v
	}
	if cancelledAt.Valid {
		v := cancelledAt.Time.UTC()
		t.CancelledAt = &v
	}
	return t, nil
}

// Create inserts a new unpaid ticket and populates ID and CreatedAt on the
// provided record.  A collision on the unique code index returns
// ErrCodeExists so the caller can retry with a fresh code.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	const q = `INSERT INTO tickets (code, customer_name, customer_phone, brand, color, size, price_dkk, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, 'unpaid')`
	res, err := r.db.ExecContext(ctx, q,
		t.Code, t.CustomerName, t.CustomerPhone, t.Brand, t.Color, t.Size, t.PriceDKK)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCodeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = model.StatusUnpaid
	// Query back the row to populate the DB-assigned creation timestamp.
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM tickets WHERE id = ?`, t.ID).
		Scan(&t.CreatedAt)
}

// GetByCode fetches a ticket by its public code.
func (r *TicketRepo) GetByCode(ctx context.Context, code string) (model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE code = ? LIMIT 1`, code))
	if err == sql.ErrNoRows {
		return model.Ticket{}, ErrTicketNotFound
	}
	return t, err
}

// GetByID fetches a ticket by primary key.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return model.Ticket{}, ErrTicketNotFound
	}
	return t, err
}

// cas runs a conditional update and maps zero affected rows to
// ErrInvalidTransition.
func (r *TicketRepo) cas(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

// MarkPaid advances an unpaid ticket to paid, recording the provider
// reference and the payment timestamp.  The status guard makes the
// operation execute at most once per ticket no matter how many payment
// signals race: exactly one caller sees nil, all others see
// ErrInvalidTransition.  An empty providerRef (zero-price confirmation)
// is stored as NULL.
func (r *TicketRepo) MarkPaid(ctx context.Context, code, providerRef string) error {
	ref := sql.NullString{String: providerRef, Valid: providerRef != ""}
	return r.cas(ctx,
		`UPDATE tickets SET status = 'paid', paid_at = UTC_TIMESTAMP(), payment_ref = ?
		 WHERE code = ? AND status = 'unpaid'`,
		ref, code)
}

// SetPaymentRef replaces the provider reference of a still-unpaid ticket.
// Used when a stale payment intent is superseded by a fresh one.
func (r *TicketRepo) SetPaymentRef(ctx context.Context, code, providerRef string) error {
	ref := sql.NullString{String: providerRef, Valid: providerRef != ""}
	return r.cas(ctx,
		`UPDATE tickets SET payment_ref = ? WHERE code = ? AND status = 'unpaid'`,
		ref, code)
}

// Claim moves a paid ticket to in_progress under the given sharpener.
func (r *TicketRepo) Claim(ctx context.Context, id, sharpenerID uint64) error {
	return r.cas(ctx,
		`UPDATE tickets SET status = 'in_progress', started_at = UTC_TIMESTAMP(), claimed_by_id = ?
		 WHERE id = ? AND status = 'paid'`,
		sharpenerID, id)
}

// PromoteUnpaid moves an unpaid ticket straight to paid without a payment
// signal (cash-in-hand handling).  It sets paid_at but neither claimed_by
// nor started_at; the sharpener still has to claim the ticket afterwards.
func (r *TicketRepo) PromoteUnpaid(ctx context.Context, id uint64) error {
	return r.cas(ctx,
		`UPDATE tickets SET status = 'paid', paid_at = UTC_TIMESTAMP()
		 WHERE id = ? AND status = 'unpaid'`,
		id)
}

// UnclaimInProgress returns an in_progress ticket owned by the given
// sharpener to the paid queue, clearing ownership and the start timestamp.
func (r *TicketRepo) UnclaimInProgress(ctx context.Context, id, sharpenerID uint64) error {
	return r.cas(ctx,
		`UPDATE tickets SET status = 'paid', claimed_by_id = NULL, started_at = NULL
		 WHERE id = ? AND status = 'in_progress' AND claimed_by_id = ?`,
		id, sharpenerID)
}

// DemoteUnclaimedPaid undoes a manual promotion: a paid ticket nobody has
// claimed goes back to unpaid.  paid_at is cleared because no payment ever
// existed for it; a ticket paid through a real signal carries a payment_ref
// and is demoted all the same only when a sharpener explicitly asks, which
// the coordinator restricts to the unowned case.
func (r *TicketRepo) DemoteUnclaimedPaid(ctx context.Context, id uint64) error {
	return r.cas(ctx,
		`UPDATE tickets SET status = 'unpaid', paid_at = NULL
		 WHERE id = ? AND status = 'paid' AND claimed_by_id IS NULL`,
		id)
}

// Complete finishes an in_progress ticket.  Ownership moves from the
// transient claimed_by column to the permanent sharpened_by column in the
// same statement, preserving the history while keeping claimed_by non-null
// only for in_progress tickets.
func (r *TicketRepo) Complete(ctx context.Context, id, sharpenerID uint64) error {
	return r.cas(ctx,
		`UPDATE tickets SET status = 'completed', completed_at = UTC_TIMESTAMP(),
		        sharpened_by_id = claimed_by_id, claimed_by_id = NULL
		 WHERE id = ? AND status = 'in_progress' AND claimed_by_id = ?`,
		id, sharpenerID)
}

// Cancel terminates an unpaid or paid ticket.  Cancelled rows are kept
// forever; their codes are never reused.
func (r *TicketRepo) Cancel(ctx context.Context, id, sharpenerID uint64) error {
	return r.cas(ctx,
		`UPDATE tickets SET status = 'cancelled', cancelled_at = UTC_TIMESTAMP(), cancelled_by_id = ?
		 WHERE id = ? AND status IN ('unpaid', 'paid')`,
		sharpenerID, id)
}

// ListByStatus returns tickets in the given status ordered oldest first,
// which is the order sharpeners work the queue in.
func (r *TicketRepo) ListByStatus(ctx context.Context, status string) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE status = ? ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// CountByStatus returns the number of tickets in the given status.
func (r *TicketRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE status = ?`, status).Scan(&n)
	return n, err
}

// CountCompletedSince counts tickets completed at or after the given time.
func (r *TicketRepo) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE status = 'completed' AND completed_at >= ?`,
		since.UTC().Format("2006-01-02 15:04:05")).Scan(&n)
	return n, err
}

// RecentCompletedBy returns the sharpener's most recently completed
// tickets, newest first.
func (r *TicketRepo) RecentCompletedBy(ctx context.Context, sharpenerID uint64, limit int) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE status = 'completed' AND sharpened_by_id = ?
		 ORDER BY completed_at DESC LIMIT ?`,
		sharpenerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
