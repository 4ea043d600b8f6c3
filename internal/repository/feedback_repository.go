package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/skate-ticket-service/internal/model"
)

// FeedbackRepo provides access to the `feedback` table.  A unique index on
// ticket_id enforces the one-feedback-per-ticket rule at the storage layer,
// so concurrent submissions resolve to exactly one row.
type FeedbackRepo struct{ db *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

// Create inserts a feedback row for a ticket.  A duplicate on ticket_id
// returns ErrFeedbackExists.
func (r *FeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (ticket_id, rating, comment) VALUES (?,?,?)`,
		f.TicketID, f.Rating, f.Comment)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrFeedbackExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// GetByTicketID returns the feedback for a ticket, or sql.ErrNoRows.
func (r *FeedbackRepo) GetByTicketID(ctx context.Context, ticketID uint64) (model.Feedback, error) {
	var f model.Feedback
	err := r.db.QueryRowContext(ctx,
		`SELECT id, ticket_id, rating, comment, created_at FROM feedback WHERE ticket_id = ? LIMIT 1`,
		ticketID).Scan(&f.ID, &f.TicketID, &f.Rating, &f.Comment, &f.CreatedAt)
	return f, err
}

// RatingForSharpener aggregates the average rating and feedback count over
// tickets the sharpener completed.
func (r *FeedbackRepo) RatingForSharpener(ctx context.Context, sharpenerID uint64) (avg float64, count int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(f.rating), 0), COUNT(f.id)
		 FROM feedback f
		 JOIN tickets t ON t.id = f.ticket_id
		 WHERE t.sharpened_by_id = ?`,
		sharpenerID).Scan(&avg, &count)
	return avg, count, err
}
