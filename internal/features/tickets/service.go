// Package tickets: service.go holds the access rules: owners see and
// reply to their own tickets, staff see everything and are the only ones
// who resolve.
package tickets

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/common"
)

// Store is the storage surface the service needs. *Repository implements
// it; tests use an in-memory fake.
type Store interface {
	Create(ctx context.Context, t *SupportTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*SupportTicket, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*SupportTicket, error)
	ListAll(ctx context.Context) ([]*SupportTicket, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	SetPriority(ctx context.Context, id uuid.UUID, priority string) error
	CreateReply(ctx context.Context, reply *TicketReply) error
	ListReplies(ctx context.Context, ticketID uuid.UUID) ([]*TicketReply, error)
}

// Service manages support tickets.
type Service struct {
	repo Store
}

// NewService creates the tickets service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Create opens a new ticket for the requester.
func (s *Service) Create(ctx context.Context, req Requester, kind, title, description, priority string) (*SupportTicket, error) {
	if kind == "" {
		kind = KindSupport
	}
	if priority == "" {
		priority = PriorityLow
	}

	t := &SupportTicket{
		ID:          uuid.New(),
		SubmittedBy: req.UserID,
		Kind:        kind,
		Title:       title,
		Description: description,
		Status:      StatusInProgress,
		Priority:    priority,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"ticket_id": t.ID, "user_id": req.UserID}).Info("Ticket opened")
	return t, nil
}

// Get returns one ticket if the requester owns it or is staff.
func (s *Service) Get(ctx context.Context, req Requester, ticketID uuid.UUID) (*SupportTicket, error) {
	t, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.SubmittedBy != req.UserID && !req.IsStaff {
		return nil, common.ErrForbidden
	}
	return t, nil
}

// List returns the requester's tickets; staff get every ticket.
func (s *Service) List(ctx context.Context, req Requester) ([]*SupportTicket, error) {
	if req.IsStaff {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByUser(ctx, req.UserID)
}

// Reply adds a message to a ticket the requester can access.
func (s *Service) Reply(ctx context.Context, req Requester, ticketID uuid.UUID, text string) (*TicketReply, error) {
	if _, err := s.Get(ctx, req, ticketID); err != nil {
		return nil, err
	}

	reply := &TicketReply{
		ID:        uuid.New(),
		TicketID:  ticketID,
		RepliedBy: req.UserID,
		ReplyText: text,
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Replies returns a ticket's thread if the requester can access it.
func (s *Service) Replies(ctx context.Context, req Requester, ticketID uuid.UUID) ([]*TicketReply, error) {
	if _, err := s.Get(ctx, req, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ListReplies(ctx, ticketID)
}

// Resolve closes a ticket. Staff only.
func (s *Service) Resolve(ctx context.Context, req Requester, ticketID uuid.UUID) error {
	if !req.IsStaff {
		return common.ErrNotStaff
	}
	return s.repo.SetStatus(ctx, ticketID, StatusResolved)
}

// SetPriority changes a ticket's priority. Staff only.
func (s *Service) SetPriority(ctx context.Context, req Requester, ticketID uuid.UUID, priority string) error {
	if !req.IsStaff {
		return common.ErrNotStaff
	}
	return s.repo.SetPriority(ctx, ticketID, priority)
}
