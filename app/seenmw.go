// app/seenmw.go
package app

import (
	"strconv"
	"time"

	"Gin_postgres_redis_asset_tool/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// TouchLastSeen updates last_seen_at at most once per throttle window.
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, ok := CallerFrom(c)
		if !ok || cl.UserID == 0 {
			c.Next()
			return
		}

		key := "user:lastseen:" + strconv.FormatUint(uint64(cl.UserID), 10)
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = repo.TouchUserSeen(c, cl.UserID) // 忽略错误，不阻塞请求
		}
		c.Next()
	}
}
