package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Ayush3323/crm-backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports DB and Redis connectivity, the mailer state and the email
// dead-letter depth. mailer may be nil when outbound email is not configured.
func Health(db *gorm.DB, rdb *redis.Client, mailer func() string) gin.HandlerFunc {
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
		if rdb == nil || rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlq, _ = worker.NewDeadLetters(rdb).Len(ctx, worker.QueueEmail)
		}

		mailerStatus := "disabled"
		if mailer != nil {
			mailerStatus = mailer()
		}

		status, label, message := http.StatusOK, "OK", "CRM API is running"
		if dbStatus != "connected" || redisStatus != "connected" {
			status, label, message = http.StatusServiceUnavailable, "DEGRADED", "A dependency is unreachable"
		}

		c.JSON(status, gin.H{
			"status":    label,
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"db":        dbStatus,
			"redis":     redisStatus,
			"mailer":    mailerStatus,
			"email_dlq": dlq,
		})
	}
}
