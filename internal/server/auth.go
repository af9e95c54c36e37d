package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/shopstack/shopbill/internal/auth/domain"
	shopdomain "github.com/shopstack/shopbill/internal/shop/domain"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	ShopName  string `json:"shop_name" binding:"required"`
	OwnerName string `json:"owner_name" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register signs up a shop owner: one user plus one shop, which stays
// inactive until an admin approves a subscription payment.
func (s *Server) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Role:     authdomain.RoleShop,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	newShop, err := s.shopSvc.Create(c.Request.Context(), shopdomain.CreateShopRequest{
		UserID:    user.ID,
		ShopName:  req.ShopName,
		OwnerName: req.OwnerName,
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     user.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{
		"user": user,
		"shop": newShop,
	}})
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	ip := c.ClientIP()

	allowed, err := s.loginLimiter.Allow(c.Request.Context(), email, ip)
	if err != nil {
		s.log.Warn("login limiter unavailable", zap.Error(err))
	}
	if !allowed {
		AbortWithError(c, authdomain.ErrTooManyAttempts)
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: ip,
	})
	if err != nil {
		_ = s.loginLimiter.RecordFailure(c.Request.Context(), email, ip)
		AbortWithError(c, err)
		return
	}

	_ = s.loginLimiter.Reset(c.Request.Context(), email, ip)
	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"user":       result.User,
		"expires_at": result.ExpiresAt,
	}})
}

func (s *Server) Logout(c *gin.Context) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	payload := gin.H{"user": user}
	if user.Role == authdomain.RoleShop {
		userShop, err := s.shopSvc.GetByUserID(c.Request.Context(), user.ID)
		if err == nil {
			payload["shop"] = userShop
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": payload})
}
