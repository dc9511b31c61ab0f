// handlers_auth.go: registration, login and token refresh.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/globalcluster/referral-backend/internal/auth"
	"github.com/globalcluster/referral-backend/internal/common"
	"github.com/globalcluster/referral-backend/internal/features/profiles"
)

type signupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	UserType    string `json:"user_type" binding:"required,oneof=individual company"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Country     string `json:"country"`
	State       string `json:"state"`
	City        string `json:"city"`

	Gender    string `json:"gender"`
	SponsorID string `json:"sponsor_id"`

	CompanyRegistrationNumber string `json:"company_registration_number"`
}

func userResponse(u *profiles.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"user_type":   u.UserType,
		"status":      u.Status,
		"is_active":   u.IsActive,
		"date_joined": common.FormatDate(u.DateJoined),
	}
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := profiles.SignupInput{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		UserType:    req.UserType,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Country:     req.Country,
		State:       req.State,
		City:        req.City,

		Gender:                    req.Gender,
		CompanyRegistrationNumber: req.CompanyRegistrationNumber,
	}
	if req.SponsorID != "" {
		sponsorID, err := uuid.Parse(req.SponsorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sponsor_id"})
			return
		}
		in.SponsorID = &sponsorID
	}

	u, err := s.profiles.Signup(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(u))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := s.profiles.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	access, refresh, err := auth.GenerateTokenPair(s.cfg, u.ID.String(), u.Email, u.UserType, u.IsStaff)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          userResponse(u),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := auth.ValidateRefreshToken(s.cfg, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	// Re-read the account so revoked or deactivated users cannot refresh.
	u, err := s.profiles.Get(c.Request.Context(), userID)
	if err != nil || !u.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account unavailable"})
		return
	}

	access, refresh, err := auth.GenerateTokenPair(s.cfg, u.ID.String(), u.Email, u.UserType, u.IsStaff)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}
