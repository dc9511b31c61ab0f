// handlers_tickets.go: support ticket endpoints.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/globalcluster/referral-backend/internal/features/tickets"
)

func requester(c *gin.Context) tickets.Requester {
	return tickets.Requester{UserID: currentUserID(c), IsStaff: isStaff(c)}
}

type createTicketRequest struct {
	Kind        string `json:"kind" binding:"omitempty,oneof=support suggestion"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"omitempty,oneof=high medium low"`
}

func (s *Server) handleCreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := s.tickets.Create(c.Request.Context(), requester(c), req.Kind, req.Title, req.Description, req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleListTickets(c *gin.Context) {
	list, err := s.tickets.List(c.Request.Context(), requester(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": list})
}

func (s *Server) handleGetTicket(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	t, err := s.tickets.Get(c.Request.Context(), requester(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type replyRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleReply(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := s.tickets.Reply(c.Request.Context(), requester(c), id, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func (s *Server) handleListReplies(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	replies, err := s.tickets.Replies(c.Request.Context(), requester(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

func (s *Server) handleResolveTicket(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.tickets.Resolve(c.Request.Context(), requester(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

type priorityRequest struct {
	Priority string `json:"priority" binding:"required,oneof=high medium low"`
}

func (s *Server) handleSetTicketPriority(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req priorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.tickets.SetPriority(c.Request.Context(), requester(c), id, req.Priority); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
