// controllers/srv.go
package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/app"
	"Gin_postgres_redis_asset_tool/services"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Srv struct {
	Svc *services.Services
}

func GetSrv(a *app.App) *Srv {
	return &Srv{Svc: a.Services}
}

// --- helpers ---

func caller(c *gin.Context) services.Caller {
	cl, _ := app.CallerFrom(c)
	return cl
}

func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return page, size
}

// csv splits ?states=A,B and repeated ?states=A&states=B alike.
func csv(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Invalid("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func bind(c *gin.Context, in any) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return false
	}
	return true
}
