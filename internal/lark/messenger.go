package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"lark-base-gateway/internal/config"
)

// Every outgoing message carries this disclosure. It is part of the content
// contract with the end user, not a cosmetic detail.
const disclosureSuffix = "このメッセージはAIが生成したものです。"

// Messenger posts reply text to a Lark chat.
type Messenger struct {
	messageURL string
	tokens     oauth2.TokenSource
	client     *http.Client
}

// NewMessenger creates a message-send client backed by the given token source.
func NewMessenger(cfg *config.LarkConfig, tokens oauth2.TokenSource) *Messenger {
	return &Messenger{
		messageURL: cfg.MessageURL,
		tokens:     tokens,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Send delivers text to the chat. The returned error is for the caller's
// side channel (log/metric); a reply failure must never abort the gateway.
func (m *Messenger) Send(ctx context.Context, chatID, text string) error {
	tok, err := m.tokens.Token()
	if err != nil {
		return err
	}

	content, err := json.Marshal(map[string]string{
		"text": text + "\n\n" + disclosureSuffix,
	})
	if err != nil {
		return fmt.Errorf("lark: encode message content: %w", err)
	}

	payload, err := json.Marshal(sendMessageRequest{
		ReceiveID: chatID,
		MsgType:   "text",
		Content:   string(content),
	})
	if err != nil {
		return fmt.Errorf("lark: encode message request: %w", err)
	}

	logrus.Debugf("Sending Lark message to chat %s", chatID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.messageURL+"?receive_id_type=chat_id", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("lark: build send request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("lark: send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lark: send message: unexpected status %d", resp.StatusCode)
	}

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("lark: decode send response: %w", err)
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Msg: env.Msg}
	}

	return nil
}
