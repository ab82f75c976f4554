package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// Concurrency caps the number of crawls in flight. Every crawl owns a whole
// browser process, so this is the server's memory bound. A request waits up
// to wait for a slot and is then rejected with 503.
//
// A limit of zero or less disables the cap.
func Concurrency(limit int, wait time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(int64(limit))

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
		err := sem.Acquire(ctx, 1)
		cancel()
		if err != nil {
			abort(c, http.StatusServiceUnavailable, "server busy, too many crawls in progress")
			return
		}
		defer sem.Release(1)

		c.Next()
	}
}
