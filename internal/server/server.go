// server.go wires the routes and maps service errors to HTTP statuses.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/common"
	"github.com/globalcluster/referral-backend/internal/config"
	"github.com/globalcluster/referral-backend/internal/features/earnings"
	"github.com/globalcluster/referral-backend/internal/features/profiles"
	"github.com/globalcluster/referral-backend/internal/features/referrals"
	"github.com/globalcluster/referral-backend/internal/features/tickets"
	"github.com/globalcluster/referral-backend/internal/features/wallet"
)

// Server holds the services behind the HTTP API.
type Server struct {
	cfg       *config.Config
	db        *pgxpool.Pool
	profiles  *profiles.Service
	reporting *earnings.Reporting
	wallet    *wallet.Service
	tickets   *tickets.Service
	referrals *referrals.Service
}

// New creates the server.
func New(cfg *config.Config, db *pgxpool.Pool, p *profiles.Service, rep *earnings.Reporting,
	w *wallet.Service, t *tickets.Service, ref *referrals.Service) *Server {
	return &Server{cfg: cfg, db: db, profiles: p, reporting: rep, wallet: w, tickets: t, referrals: ref}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if s.cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", s.handleSignup)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/refresh", s.handleRefresh)
	}

	// Click-throughs come from people following a shared link, not members.
	api.POST("/products/:id/traffic", s.handleProductTraffic)

	authed := api.Group("", Auth(s.cfg))
	{
		authed.GET("/me", s.handleMe)
		authed.GET("/me/profile", s.handleMyProfile)
		authed.GET("/me/referrals", s.handleMyReferrals)
		authed.PUT("/me/contact", s.handleUpdateContact)

		authed.GET("/earnings/report", s.handleEarningsReport)

		authed.GET("/wallet", s.handleWallet)
		authed.GET("/wallet/balance", s.handleWalletBalance)
		authed.GET("/wallet/transactions", s.handleWalletTransactions)
		authed.POST("/wallet/deposits", s.handleDeposit)
		authed.POST("/wallet/deposits/:reference/verify", s.handleVerifyDeposit)
		authed.POST("/wallet/payouts", s.handlePayout)
		authed.GET("/wallet/payments", s.handleListPayments)
		authed.GET("/wallet/banks", s.handleListBanks)
		authed.GET("/wallet/resolve", s.handleResolveAccount)

		authed.POST("/tickets", s.handleCreateTicket)
		authed.GET("/tickets", s.handleListTickets)
		authed.GET("/tickets/:id", s.handleGetTicket)
		authed.GET("/tickets/:id/replies", s.handleListReplies)
		authed.POST("/tickets/:id/replies", s.handleReply)

		authed.GET("/products", s.handleListActiveProducts)
		authed.POST("/products", s.handleCreateProduct)
		authed.GET("/products/:id", s.handleGetProduct)
		authed.POST("/products/:id/shares", s.handleRequestShare)

		authed.GET("/rankings", s.handleLeaderboard)
		authed.GET("/rankings/me", s.handleMyRanking)
	}

	admin := api.Group("/admin", Auth(s.cfg), RequireStaff())
	{
		admin.POST("/users/:id/approve", s.handleApproveUser)
		admin.POST("/users/:id/reject", s.handleRejectUser)
		admin.PUT("/users/:id/active", s.handleSetUserActive)

		admin.POST("/tickets/:id/resolve", s.handleResolveTicket)
		admin.PUT("/tickets/:id/priority", s.handleSetTicketPriority)

		admin.GET("/products", s.handleListAllProducts)
		admin.POST("/products/:id/approve", s.handleApproveProduct)
		admin.POST("/products/:id/decline", s.handleDeclineProduct)

		admin.POST("/shares/:id/approve", s.handleApproveShare)
		admin.POST("/shares/:id/reject", s.handleRejectShare)
	}

	return r
}

// respondError maps the service sentinel errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrProfileNotFound),
		errors.Is(err, common.ErrWalletNotFound),
		errors.Is(err, common.ErrTransactionNotFound),
		errors.Is(err, common.ErrTicketNotFound),
		errors.Is(err, common.ErrProductNotFound),
		errors.Is(err, common.ErrShareRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrSelfSponsor),
		errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrInvalidStatus),
		errors.Is(err, common.ErrNoPendingShares):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrNotStaff), errors.Is(err, common.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
