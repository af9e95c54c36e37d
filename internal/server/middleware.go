package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/shopstack/shopbill/internal/auth/domain"
	shopdomain "github.com/shopstack/shopbill/internal/shop/domain"
)

const (
	contextUserKey = "current_user"
	contextShopKey = "current_shop"
)

// AuthRequired resolves the session cookie into the authenticated user.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		user, err := s.authsvc.UserByID(c.Request.Context(), session.UserID.String())
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// ShopContext loads the caller's shop. Every /shop route group runs behind
// this, so handlers can assume a tenant is present.
func (s *Server) ShopContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		shop, err := s.shopSvc.GetByUserID(c.Request.Context(), user.ID)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextShopKey, shop)
		c.Next()
	}
}

func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if user.Role != authdomain.RoleAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*authdomain.User)
	return user, ok
}

func currentShop(c *gin.Context) (*shopdomain.Shop, bool) {
	value, exists := c.Get(contextShopKey)
	if !exists {
		return nil, false
	}
	shop, ok := value.(*shopdomain.Shop)
	return shop, ok
}
