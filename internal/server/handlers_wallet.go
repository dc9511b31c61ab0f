// handlers_wallet.go: wallet, deposit and payout endpoints.
package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (s *Server) handleWallet(c *gin.Context) {
	w, err := s.wallet.GetWallet(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) handleWalletBalance(c *gin.Context) {
	balance, err := s.wallet.Balance(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance.StringFixed(2)})
}

func (s *Server) handleWalletTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txs, err := s.wallet.ListTransactions(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

type depositRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func (s *Server) handleDeposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	intent, err := s.wallet.Deposit(c.Request.Context(), currentUserID(c), currentEmail(c), amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

func (s *Server) handleVerifyDeposit(c *gin.Context) {
	t, err := s.wallet.VerifyDeposit(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type payoutRequest struct {
	Amount        string `json:"amount" binding:"required"`
	RecipientCode string `json:"recipient_code" binding:"required"`
	Reason        string `json:"reason"`
}

func (s *Server) handlePayout(c *gin.Context) {
	var req payoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	t, err := s.wallet.Payout(c.Request.Context(), currentUserID(c), amount, req.RecipientCode, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleListPayments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	records, err := s.wallet.ListPayments(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": records})
}

func (s *Server) handleListBanks(c *gin.Context) {
	banks, err := s.wallet.ListBanks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banks": banks})
}

func (s *Server) handleResolveAccount(c *gin.Context) {
	accountNumber := c.Query("account_number")
	bankCode := c.Query("bank_code")
	if accountNumber == "" || bankCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_number and bank_code are required"})
		return
	}

	info, err := s.wallet.ResolveAccount(c.Request.Context(), accountNumber, bankCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
