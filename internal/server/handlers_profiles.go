// handlers_profiles.go: account endpoints and the admin approval flow.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/globalcluster/referral-backend/internal/features/profiles"
)

func (s *Server) handleMe(c *gin.Context) {
	u, err := s.profiles.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(u))
}

func (s *Server) handleMyProfile(c *gin.Context) {
	p, err := s.profiles.GetIndividualProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":         p.UserID,
		"gender":          p.Gender,
		"sponsor_id":      p.SponsorID,
		"rank":            p.Rank,
		"membership_type": p.MembershipType,
	})
}

func (s *Server) handleMyReferrals(c *gin.Context) {
	recruits, err := s.profiles.ListSponsored(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if recruits == nil {
		recruits = []*profiles.IndividualProfile{}
	}
	c.JSON(http.StatusOK, gin.H{"referrals": recruits, "count": len(recruits)})
}

type contactRequest struct {
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Country     string `json:"country"`
	State       string `json:"state"`
	City        string `json:"city"`
}

func (s *Server) handleUpdateContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.profiles.UpdateContact(c.Request.Context(), currentUserID(c),
		req.PhoneNumber, req.Address, req.Country, req.State, req.City)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleApproveUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.profiles.Approve(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (s *Server) handleRejectUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.profiles.Reject(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (s *Server) handleSetUserActive(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.profiles.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
