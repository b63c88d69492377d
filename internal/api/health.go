package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/platemate/backend/internal/database"
)

// HealthHandler reports liveness of the API and its backing stores.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Check pings the database and, when configured, Redis. A failing database
// makes the whole check unhealthy; Redis is reported but not fatal since the
// API degrades gracefully without it.
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "up"
	if err := database.HealthCheck(c.Request.Context(), h.db); err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	redisStatus := "not configured"
	if h.redis != nil {
		redisStatus = "up"
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "down"
		}
	}

	body := gin.H{
		"status":   "healthy",
		"database": dbStatus,
		"redis":    redisStatus,
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	c.JSON(status, body)
}
