// Package tickets: repository.go runs all queries against support_tickets
// and ticket_replies.
package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/globalcluster/referral-backend/internal/common"
)

// Repository provides storage for tickets and replies.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new tickets repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const ticketColumns = `id, submitted_by, kind, title, description, status, priority, created_at, updated_at`

func scanTicket(row pgx.Row) (*SupportTicket, error) {
	var t SupportTicket
	err := row.Scan(&t.ID, &t.SubmittedBy, &t.Kind, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new ticket.
func (r *Repository) Create(ctx context.Context, t *SupportTicket) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO support_tickets (id, submitted_by, kind, title, description, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.SubmittedBy, t.Kind, t.Title, t.Description, t.Status, t.Priority)
	if err != nil {
		return fmt.Errorf("ticket insert: %w", err)
	}
	return nil
}

// GetByID returns one ticket.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*SupportTicket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ticket lookup: %w", err)
	}
	return t, nil
}

// ListByUser returns the tickets submitted by one user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*SupportTicket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ticketColumns+` FROM support_tickets
		WHERE submitted_by = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("tickets list: %w", err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

// ListAll returns every ticket, newest first. Staff only.
func (r *Repository) ListAll(ctx context.Context) ([]*SupportTicket, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ticketColumns+` FROM support_tickets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("tickets list: %w", err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]*SupportTicket, error) {
	var out []*SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("ticket scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SetStatus updates a ticket's status.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE support_tickets SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("ticket update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTicketNotFound
	}
	return nil
}

// SetPriority updates a ticket's priority.
func (r *Repository) SetPriority(ctx context.Context, id uuid.UUID, priority string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE support_tickets SET priority = $2, updated_at = NOW() WHERE id = $1
	`, id, priority)
	if err != nil {
		return fmt.Errorf("ticket update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTicketNotFound
	}
	return nil
}

// CreateReply inserts a reply on a ticket.
func (r *Repository) CreateReply(ctx context.Context, reply *TicketReply) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO ticket_replies (id, ticket_id, replied_by, reply_text)
		VALUES ($1, $2, $3, $4)
	`, reply.ID, reply.TicketID, reply.RepliedBy, reply.ReplyText)
	if err != nil {
		return fmt.Errorf("reply insert: %w", err)
	}
	return nil
}

// ListReplies returns a ticket's replies, oldest first.
func (r *Repository) ListReplies(ctx context.Context, ticketID uuid.UUID) ([]*TicketReply, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, ticket_id, replied_by, reply_text, created_at
		FROM ticket_replies
		WHERE ticket_id = $1
		ORDER BY created_at
	`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("replies list: %w", err)
	}
	defer rows.Close()

	var out []*TicketReply
	for rows.Next() {
		var reply TicketReply
		if err := rows.Scan(&reply.ID, &reply.TicketID, &reply.RepliedBy, &reply.ReplyText, &reply.CreatedAt); err != nil {
			return nil, fmt.Errorf("reply scan: %w", err)
		}
		out = append(out, &reply)
	}
	return out, rows.Err()
}
