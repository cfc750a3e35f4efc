package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	userdomain "github.com/tbilisoft/declara/internal/user/domain"
)

const (
	// HeaderUser carries the authenticated principal, set by the upstream
	// gateway. Authentication itself happens there, not here.
	HeaderUser = "X-User-ID"

	contextUserKey = "current_user"
)

func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUser))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.users.FindByID(c.Request.Context(), s.db, snowflake.ID(id))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if user == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// AdminRequired verifies the admin capability on the resolved principal.
// It must run after UserRequired.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !user.IsAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *userdomain.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*userdomain.User)
	if !ok {
		return nil
	}
	return user
}
