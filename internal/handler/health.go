package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/infra"
	"github.com/ValeenMar/tovaltech-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis connectivity and reports supplier breaker states
// and the sync dead-letter backlog. Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, breakers *infra.BreakerSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlq int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlq, _ = worker.DLQLength(ctx, rdb, worker.QueueSync)
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":       status == http.StatusOK,
			"db":       dbStatus,
			"redis":    redisStatus,
			"sync_dlq": dlq,
		}
		if breakers != nil {
			body["providers"] = breakers.States()
		}
		c.JSON(status, body)
	}
}
