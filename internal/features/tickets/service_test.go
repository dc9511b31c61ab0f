package tickets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalcluster/referral-backend/internal/common"
)

// fakeTicketRepo keeps tickets and replies in memory.
type fakeTicketRepo struct {
	tickets map[uuid.UUID]*SupportTicket
	replies map[uuid.UUID][]*TicketReply
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[uuid.UUID]*SupportTicket),
		replies: make(map[uuid.UUID][]*TicketReply),
	}
}

func (f *fakeTicketRepo) Create(ctx context.Context, t *SupportTicket) error {
	f.tickets[t.ID] = t
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*SupportTicket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, common.ErrTicketNotFound
	}
	return t, nil
}

func (f *fakeTicketRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*SupportTicket, error) {
	var out []*SupportTicket
	for _, t := range f.tickets {
		if t.SubmittedBy == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListAll(ctx context.Context) ([]*SupportTicket, error) {
	var out []*SupportTicket
	for _, t := range f.tickets {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTicketRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	t, ok := f.tickets[id]
	if !ok {
		return common.ErrTicketNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTicketRepo) SetPriority(ctx context.Context, id uuid.UUID, priority string) error {
	t, ok := f.tickets[id]
	if !ok {
		return common.ErrTicketNotFound
	}
	t.Priority = priority
	return nil
}

func (f *fakeTicketRepo) CreateReply(ctx context.Context, reply *TicketReply) error {
	f.replies[reply.TicketID] = append(f.replies[reply.TicketID], reply)
	return nil
}

func (f *fakeTicketRepo) ListReplies(ctx context.Context, ticketID uuid.UUID) ([]*TicketReply, error) {
	return f.replies[ticketID], nil
}

func TestCreateTicketDefaults(t *testing.T) {
	svc := NewService(newFakeTicketRepo())
	owner := Requester{UserID: uuid.New()}

	ticket, err := svc.Create(context.Background(), owner, "", "Login broken", "cannot sign in", "")
	require.NoError(t, err)

	assert.Equal(t, KindSupport, ticket.Kind)
	assert.Equal(t, PriorityLow, ticket.Priority)
	assert.Equal(t, StatusInProgress, ticket.Status)
	assert.Equal(t, owner.UserID, ticket.SubmittedBy)
}

func TestGetTicketAccess(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewService(repo)
	owner := Requester{UserID: uuid.New()}
	stranger := Requester{UserID: uuid.New()}
	staff := Requester{UserID: uuid.New(), IsStaff: true}

	ticket, err := svc.Create(context.Background(), owner, KindSupport, "Payout delayed", "", PriorityMedium)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), owner, ticket.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), staff, ticket.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), stranger, ticket.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestListTickets(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewService(repo)
	alice := Requester{UserID: uuid.New()}
	bob := Requester{UserID: uuid.New()}
	staff := Requester{UserID: uuid.New(), IsStaff: true}

	_, err := svc.Create(context.Background(), alice, KindSupport, "A", "", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bob, KindSuggestion, "B", "", "")
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(context.Background(), staff)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplyRequiresAccess(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewService(repo)
	owner := Requester{UserID: uuid.New()}
	stranger := Requester{UserID: uuid.New()}

	ticket, err := svc.Create(context.Background(), owner, KindSupport, "Help", "", "")
	require.NoError(t, err)

	_, err = svc.Reply(context.Background(), stranger, ticket.ID, "me too")
	assert.ErrorIs(t, err, common.ErrForbidden)

	reply, err := svc.Reply(context.Background(), owner, ticket.ID, "any update?")
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, reply.RepliedBy)

	thread, err := svc.Replies(context.Background(), owner, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, thread, 1)
}

func TestResolveStaffOnly(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewService(repo)
	owner := Requester{UserID: uuid.New()}
	staff := Requester{UserID: uuid.New(), IsStaff: true}

	ticket, err := svc.Create(context.Background(), owner, KindSupport, "Help", "", "")
	require.NoError(t, err)

	err = svc.Resolve(context.Background(), owner, ticket.ID)
	assert.ErrorIs(t, err, common.ErrNotStaff)
	assert.Equal(t, StatusInProgress, repo.tickets[ticket.ID].Status)

	require.NoError(t, svc.Resolve(context.Background(), staff, ticket.ID))
	assert.Equal(t, StatusResolved, repo.tickets[ticket.ID].Status)
}

func TestSetPriorityStaffOnly(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewService(repo)
	owner := Requester{UserID: uuid.New()}
	staff := Requester{UserID: uuid.New(), IsStaff: true}

	ticket, err := svc.Create(context.Background(), owner, KindSupport, "Help", "", "")
	require.NoError(t, err)

	err = svc.SetPriority(context.Background(), owner, ticket.ID, PriorityHigh)
	assert.ErrorIs(t, err, common.ErrNotStaff)

	require.NoError(t, svc.SetPriority(context.Background(), staff, ticket.ID, PriorityHigh))
	assert.Equal(t, PriorityHigh, repo.tickets[ticket.ID].Priority)
}
