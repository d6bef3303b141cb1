package app

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/models"
	"Gin_postgres_redis_asset_tool/services"
	"Gin_postgres_redis_asset_tool/session"

	"github.com/gin-gonic/gin"
)

const (
	callerKey = "caller"
	claimsKey = "claims"
)

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AuthRequired verifies the bearer token, rejects revoked tokens and
// disabled users, and puts the caller into the context.
func AuthRequired(tokens *session.TokenManager, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		claims, err := tokens.Verify(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid token"})
			return
		}

		// 确认用户仍存在且未被禁用；类型和地点以数据库为准
		u, err := repo.FindUserByID(c.Request.Context(), claims.UserID)
		if err != nil || u.Disabled {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set(claimsKey, claims)
		c.Set(callerKey, services.Caller{UserID: u.ID, Type: u.Type, LocationID: u.LocationID})
		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, ok := CallerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if cl.Type != models.UserAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func CallerFrom(c *gin.Context) (services.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return services.Caller{}, false
	}
	cl, ok := v.(services.Caller)
	return cl, ok
}

func ClaimsFrom(c *gin.Context) *session.Claims {
	v, _ := c.Get(claimsKey)
	cl, _ := v.(*session.Claims)
	return cl
}
