package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lark-base-gateway/internal/command"
	"lark-base-gateway/internal/config"
	"lark-base-gateway/internal/gateway"
	"lark-base-gateway/internal/scheduler"
)

// EventHandler is the gateway surface the webhook endpoint needs.
type EventHandler interface {
	Handle(ctx context.Context, ev gateway.InboundEvent) gateway.Outcome
}

// Handlers contains all HTTP handlers
type Handlers struct {
	config  *config.Config
	gateway EventHandler
	tables  command.TableReader
	sync    *scheduler.LedgerSync
}

// NewHandlers creates new HTTP handlers. tables may be nil when the Bitable
// credentials are not configured.
func NewHandlers(cfg *config.Config, gw EventHandler, tables command.TableReader, sync *scheduler.LedgerSync) *Handlers {
	return &Handlers{
		config:  cfg,
		gateway: gw,
		tables:  tables,
		sync:    sync,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	// Health check
	router.GET("/healthz", h.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Chat-event webhook
	router.POST("/webhook", h.Webhook)

	// Read endpoints for the Base UI panels
	router.GET("/tables", h.GetTables)
	router.GET("/tables/:tableId/records", h.GetRecords)

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/sync/status", h.GetSyncStatus)
		api.POST("/sync/run-once", h.RunSyncOnce)
	}
}

// Webhook handles inbound chat events. It always answers 200 with a
// well-formed body: anything else makes the platform retry the delivery
// and manufactures the very duplicates the gateway exists to suppress.
func (h *Handlers) Webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, WebhookAck{Status: string(gateway.StatusRejected), Message: "invalid request body"})
		return
	}

	ev := gateway.InboundEvent{Challenge: req.Challenge}
	if req.Event != nil && req.Event.Message != nil {
		ev.ChatID = req.Event.Message.ChatID
		ev.MessageID = req.Event.Message.MessageID
		ev.Content = req.Event.Message.Content
	}

	outcome := h.gateway.Handle(c.Request.Context(), ev)

	if outcome.Status == gateway.StatusVerified {
		c.JSON(http.StatusOK, gin.H{"challenge": outcome.Challenge})
		return
	}

	c.JSON(http.StatusOK, WebhookAck{Status: string(outcome.Status), Message: outcome.Reason})
}

// GetTables returns all tables of the configured Bitable app
func (h *Handlers) GetTables(c *gin.Context) {
	if h.tables == nil {
		c.JSON(http.StatusInternalServerError, ReadResponse{
			Success: false,
			Error:   "テーブル一覧の取得に失敗しました",
			Details: "Bitable credentials are not configured",
		})
		return
	}

	tables, err := h.tables.ListTables(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ReadResponse{
			Success: false,
			Error:   "テーブル一覧の取得に失敗しました",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ReadResponse{Success: true, Data: tables})
}

// GetRecords returns the records of one table
func (h *Handlers) GetRecords(c *gin.Context) {
	if h.tables == nil {
		c.JSON(http.StatusInternalServerError, ReadResponse{
			Success: false,
			Error:   "レコード一覧の取得に失敗しました",
			Details: "Bitable credentials are not configured",
		})
		return
	}

	records, err := h.tables.ListRecords(c.Request.Context(), c.Param("tableId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ReadResponse{
			Success: false,
			Error:   "レコード一覧の取得に失敗しました",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ReadResponse{Success: true, Data: records})
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Messaging: featureState(h.config.Lark.MessagingEnabled()),
		Bitable:   featureState(h.config.Lark.BitableEnabled()),
		OpenAI:    featureState(h.config.OpenAI.Enabled()),
		Ledger:    featureState(h.config.Ledger.Enabled()),
		Metrics:   make(map[string]string),
	}

	if h.sync != nil && h.sync.IsRunning() {
		response.Metrics["ledger_sync"] = "running"
		response.Metrics["next_run"] = h.sync.GetNextRun().Format(time.RFC3339)
		response.Metrics["last_run"] = h.sync.GetLastRun().Format(time.RFC3339)
	} else {
		response.Metrics["ledger_sync"] = "stopped"
	}

	c.JSON(http.StatusOK, response)
}

func featureState(enabled bool) string {
	if enabled {
		return "ok"
	}
	return "disabled"
}
