package handler

import "time"

// webhookRequest mirrors the platform's webhook body. Content is a JSON
// string of shape {"text": ...}.
type webhookRequest struct {
	Challenge string `json:"challenge"`
	Event     *struct {
		Message *struct {
			ChatID    string `json:"chat_id"`
			MessageID string `json:"message_id"`
			Content   string `json:"content"`
		} `json:"message"`
	} `json:"event"`
}

// WebhookAck is the acknowledgment body for non-handshake events.
type WebhookAck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReadResponse is the envelope of the table/record read endpoints.
type ReadResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details string      `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Messaging string            `json:"messaging"`
	Bitable   string            `json:"bitable"`
	OpenAI    string            `json:"openai"`
	Ledger    string            `json:"ledger"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
