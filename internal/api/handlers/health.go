package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	logger      *logrus.Logger
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Latency   string    `json:"latency,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Ready     bool            `json:"ready"`
	Timestamp time.Time       `json:"timestamp"`
	Service   string          `json:"service"`
	Checks    map[string]bool `json:"checks"`
}

var startTime = time.Now()

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

// GetHealth performs comprehensive health checks
func (h *HealthHandler) GetHealth(c *gin.Context) {
	h.logger.Debug("Health check requested")

	checks := make(map[string]HealthCheck)
	overallStatus := "healthy"

	dbCheck := h.checkDatabase()
	checks["database"] = dbCheck
	if dbCheck.Status != "healthy" {
		overallStatus = "unhealthy"
	}

	redisCheck := h.checkRedis()
	checks["redis"] = redisCheck
	if redisCheck.Status != "healthy" {
		overallStatus = "degraded"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Service:   "guidance-service",
		Version:   "1.0.0",
		Uptime:    time.Since(startTime).String(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetReady checks if the service is ready to serve requests
func (h *HealthHandler) GetReady(c *gin.Context) {
	h.logger.Debug("Readiness check requested")

	checks := map[string]bool{
		"database": h.isDatabaseReady(),
		"redis":    h.isRedisReady(),
	}

	ready := true
	for _, check := range checks {
		if !check {
			ready = false
			break
		}
	}

	response := ReadinessResponse{
		Ready:     ready,
		Timestamp: time.Now(),
		Service:   "guidance-service",
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

func (h *HealthHandler) checkDatabase() HealthCheck {
	start := time.Now()

	sqlDB, err := h.db.DB()
	if err != nil {
		return HealthCheck{
			Status:    "unhealthy",
			Message:   "Failed to get database instance",
			CheckedAt: time.Now(),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return HealthCheck{
			Status:    "unhealthy",
			Message:   "Database ping failed: " + err.Error(),
			CheckedAt: time.Now(),
		}
	}

	latency := time.Since(start)
	status := "healthy"
	if latency > 100*time.Millisecond {
		status = "slow"
	}

	return HealthCheck{
		Status:    status,
		Latency:   latency.String(),
		CheckedAt: time.Now(),
	}
}

func (h *HealthHandler) checkRedis() HealthCheck {
	start := time.Now()

	if _, err := h.redisClient.Ping(context.Background()).Result(); err != nil {
		return HealthCheck{
			Status:    "unhealthy",
			Message:   "Redis ping failed: " + err.Error(),
			CheckedAt: time.Now(),
		}
	}

	latency := time.Since(start)
	status := "healthy"
	if latency > 50*time.Millisecond {
		status = "slow"
	}

	return HealthCheck{
		Status:    status,
		Latency:   latency.String(),
		CheckedAt: time.Now(),
	}
}

func (h *HealthHandler) isDatabaseReady() bool {
	sqlDB, err := h.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

func (h *HealthHandler) isRedisReady() bool {
	_, err := h.redisClient.Ping(context.Background()).Result()
	return err == nil
}
