// Package tickets manages support tickets and their reply threads.
// models.go describes the stored structures.
package tickets

import (
	"time"

	"github.com/google/uuid"
)

// Ticket kinds
const (
	KindSupport    = "support"
	KindSuggestion = "suggestion"
)

// Ticket statuses
const (
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
)

// Ticket priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// SupportTicket is one ticket. Owners and staff can read it; only staff
// resolve it.
type SupportTicket struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SubmittedBy uuid.UUID `db:"submitted_by" json:"submitted_by"`
	Kind        string    `db:"kind" json:"kind"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	Priority    string    `db:"priority" json:"priority"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TicketReply is one message in a ticket's thread.
type TicketReply struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TicketID  uuid.UUID `db:"ticket_id" json:"ticket_id"`
	RepliedBy uuid.UUID `db:"replied_by" json:"replied_by"`
	ReplyText string    `db:"reply_text" json:"reply_text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Requester identifies who is performing a ticket operation; staff get a
// wider view than owners.
type Requester struct {
	UserID  uuid.UUID
	IsStaff bool
}
