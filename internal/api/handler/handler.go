package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"renotimeline/internal/api/dto"
	"renotimeline/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// ScanService is what the handler needs from the scanner.
type ScanService interface {
	Run(ctx context.Context) error
}

type SchedulerHandler struct {
	service ScanService
}

func NewSchedulerHandler(svc ScanService) *SchedulerHandler {
	return &SchedulerHandler{service: svc}
}

// RunScan is the cron entrypoint: no body, invoked on a periodic external
// schedule.
func (h *SchedulerHandler) RunScan(c *gin.Context) {
	err := h.service.Run(c.Request.Context())

	if errors.Is(err, scheduler.ErrScanInProgress) {
		c.JSON(http.StatusOK, dto.ScanResponse{
			Success:   true,
			Message:   "scan already in progress, skipped",
			Timestamp: time.Now(),
		})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ScanResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ScanResponse{
		Success:   true,
		Message:   "scheduler tick completed",
		Timestamp: time.Now(),
	})
}

func (h *SchedulerHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
