package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	shopdomain "github.com/shopstack/shopbill/internal/shop/domain"
)

type updateShopProfileRequest struct {
	ShopName  *string `json:"shop_name"`
	OwnerName *string `json:"owner_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

func (s *Server) GetShopProfile(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": shop})
}

func (s *Server) UpdateShopProfile(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req updateShopProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.shopSvc.Update(c.Request.Context(), shopdomain.UpdateShopRequest{
		ShopID:    shop.ID,
		ShopName:  req.ShopName,
		OwnerName: req.OwnerName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDashboardStats(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	stats, err := s.shopSvc.DashboardStats(c.Request.Context(), shop.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
