package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/BAHUBALISID/smj/internal/infra"
	"github.com/BAHUBALISID/smj/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type dependencyCheck struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

func probe(ping func() error) dependencyCheck {
	start := time.Now()
	st := "up"
	if ping() != nil {
		st = "down"
	}
	return dependencyCheck{Status: st, LatencyMS: time.Since(start).Milliseconds()}
}

// Health answers 503 when postgres or redis does not respond within 3s.
// Breakers and the receipt dead-letter depth are reported but never change
// the status: both guard optional paths.
func Health(db *gorm.DB, rdb *redis.Client, breakers map[string]*infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		pg := probe(func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
		rd := probe(func() error { return rdb.Ping(ctx).Err() })

		ok := pg.Status == "up" && rd.Status == "up"
		body := gin.H{
			"ok":       ok,
			"postgres": pg,
			"redis":    rd,
		}
		if len(breakers) > 0 {
			states := make(map[string]infra.BreakerStatus, len(breakers))
			for name, cb := range breakers {
				states[name] = cb.Status()
			}
			body["breakers"] = states
		}
		if rd.Status == "up" {
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueReceipt); err == nil {
				body["receipt_dlq"] = n
			}
		}

		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
