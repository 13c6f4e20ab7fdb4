package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
)

// window tracks one client's requests in a fixed window.
type window struct {
	count int
	end   time.Time
}

// RateLimiter allows limit requests per window per client IP. Expired
// entries are pruned on the request that finds them.
func RateLimiter(limit int, per time.Duration) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*window)
		sweepAt time.Time
	)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if now.After(sweepAt) {
			for k, w := range clients {
				if now.After(w.end) {
					delete(clients, k)
				}
			}
			sweepAt = now.Add(per)
		}
		w, ok := clients[ip]
		if !ok || now.After(w.end) {
			w = &window{end: now.Add(per)}
			clients[ip] = w
		}
		w.count++
		over := w.count > limit
		retry := w.end
		mu.Unlock()

		if over {
			c.Header("Retry-After", retry.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
