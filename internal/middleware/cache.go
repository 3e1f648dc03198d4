package middleware

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// cacheWriter копирует тело ответа, отдавая его клиенту как обычно.
type cacheWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Cache кэширует JSON-ответы GET-запросов в redis на короткий TTL.
// Ключ включает пользователя: дашборды персональные. При rdb == nil
// middleware превращается в no-op.
func Cache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		uid := ""
		if user, ok := CurrentUser(c); ok {
			uid = user.ID
		}
		sum := sha1.Sum([]byte(uid + ":" + c.Request.URL.RequestURI()))
		key := fmt.Sprintf("cache:%x", sum)

		ctx := c.Request.Context()
		if body, err := rdb.Get(ctx, key).Bytes(); err == nil && len(body) > 0 {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		cw := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header("X-Cache", "MISS")

		c.Next()

		if c.Writer.Status() == http.StatusOK && cw.buf.Len() > 0 {
			_ = rdb.Set(ctx, key, cw.buf.Bytes(), ttl).Err()
		}
	}
}
