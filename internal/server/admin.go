package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	shopdomain "github.com/shopstack/shopbill/internal/shop/domain"
	verificationdomain "github.com/shopstack/shopbill/internal/verification/domain"
)

func (s *Server) GetPlatformStats(c *gin.Context) {
	stats, err := s.adminSvc.PlatformStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (s *Server) AdminListShops(c *gin.Context) {
	var req shopdomain.ListShopRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.shopSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdminActivateShop(c *gin.Context) {
	s.adminSetShopActive(c, true)
}

func (s *Server) AdminDeactivateShop(c *gin.Context) {
	s.adminSetShopActive(c, false)
}

func (s *Server) adminSetShopActive(c *gin.Context, active bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.shopSvc.SetActive(c.Request.Context(), id, active); err != nil {
		AbortWithError(c, err)
		return
	}

	shop, err := s.shopSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": shop})
}

func (s *Server) AdminListVerifications(c *gin.Context) {
	var req verificationdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.verificationSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type reviewVerificationRequest struct {
	AdminNotes string `json:"admin_notes"`
}

func (s *Server) AdminVerifyPayment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req reviewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.verificationSvc.Verify(c.Request.Context(), id, req.AdminNotes)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdminRejectPayment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req reviewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.verificationSvc.Reject(c.Request.Context(), id, req.AdminNotes)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
