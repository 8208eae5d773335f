package services

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLog is one recorded API request.
type RequestLog struct {
	RequestID    string        `json:"request_id"`
	Timestamp    time.Time     `json:"timestamp"`
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time_ns"`
}

// MonitoringService keeps an in-memory ring of recent request logs.
type MonitoringService struct {
	mu       sync.RWMutex
	logs     []RequestLog
	capacity int
}

const defaultLogCapacity = 1000

// NewMonitoringService creates a new MonitoringService.
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{capacity: defaultLogCapacity}
}

// LogRequest records one request, evicting the oldest entry once the ring
// is full.
func (s *MonitoringService) LogRequest(entry RequestLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > s.capacity {
		s.logs = s.logs[len(s.logs)-s.capacity:]
	}
}

// RecentLogs returns up to limit most recent entries, newest first.
func (s *MonitoringService) RecentLogs(limit int) []RequestLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.logs) {
		limit = len(s.logs)
	}
	out := make([]RequestLog, 0, limit)
	for i := len(s.logs) - 1; i >= len(s.logs)-limit; i-- {
		out = append(out, s.logs[i])
	}
	return out
}

// LoggingMiddleware tags every request with a UUID (echoed in the
// X-Request-ID response header) and records it after completion. Monitoring
// endpoints themselves are excluded to keep the ring useful.
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		path := c.Request.URL.Path
		if path == "/api/v1/monitoring/logs" {
			return
		}
		s.LogRequest(RequestLog{
			RequestID:    requestID,
			Timestamp:    start,
			Method:       c.Request.Method,
			Path:         path,
			StatusCode:   c.Writer.Status(),
			ResponseTime: time.Since(start),
		})
	}
}
