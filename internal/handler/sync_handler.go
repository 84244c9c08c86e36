package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunSyncOnce flushes the processed-message ledger immediately
func (h *Handlers) RunSyncOnce(c *gin.Context) {
	if h.sync == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "sync_error",
			Message: "Ledger sync is not configured",
			Code:    http.StatusServiceUnavailable,
		})
		return
	}

	if err := h.sync.RunOnce(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "sync_error",
			Message: "Failed to run ledger sync",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger sync completed successfully",
	})
}

// GetSyncStatus returns the current ledger sync status
func (h *Handlers) GetSyncStatus(c *gin.Context) {
	if h.sync == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "sync_error",
			Message: "Ledger sync is not configured",
			Code:    http.StatusServiceUnavailable,
		})
		return
	}

	status := "stopped"
	if h.sync.IsRunning() {
		status = "running"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"next_run": h.sync.GetNextRun(),
		"last_run": h.sync.GetLastRun(),
	})
}
