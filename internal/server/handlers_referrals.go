// handlers_referrals.go: products, share requests and rankings.
package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListActiveProducts(c *gin.Context) {
	list, err := s.referrals.ListActiveProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

type createProductRequest struct {
	ProductName  string `json:"product_name" binding:"required"`
	Description  string `json:"description"`
	ProductValue string `json:"product_value" binding:"omitempty,oneof=whatsapp phone website"`
	ProductLink  string `json:"product_link"`
}

func (s *Server) handleCreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := s.referrals.CreateProduct(c.Request.Context(), currentUserID(c),
		req.ProductName, req.Description, req.ProductValue, req.ProductLink)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleGetProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := s.referrals.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleProductTraffic(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.referrals.RecordTraffic(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "counted"})
}

func (s *Server) handleRequestShare(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	req, err := s.referrals.RequestShare(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	list, err := s.referrals.Leaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": list})
}

func (s *Server) handleMyRanking(c *gin.Context) {
	rk, err := s.referrals.Ranking(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rk)
}

func (s *Server) handleListAllProducts(c *gin.Context) {
	list, err := s.referrals.ListProducts(c.Request.Context(), isStaff(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (s *Server) handleApproveProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.referrals.ApproveProduct(c.Request.Context(), isStaff(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

func (s *Server) handleDeclineProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.referrals.DeclineProduct(c.Request.Context(), isStaff(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "declined"})
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (s *Server) handleApproveShare(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	if err := s.referrals.ApproveShare(c.Request.Context(), isStaff(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (s *Server) handleRejectShare(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	if err := s.referrals.RejectShare(c.Request.Context(), isStaff(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}
