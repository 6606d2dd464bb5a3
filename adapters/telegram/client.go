// Package telegram implements the messaging gateway against the Telegram
// Bot API: outbound messages with inline keyboards and a long-poll ingress.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"amira/ports"
)

const apiBase = "https://api.telegram.org/bot"

// Client implements ports.Messenger.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Telegram client for the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: apiBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageReq struct {
	ChatID      int64           `json:"chat_id"`
	Text        string          `json:"text"`
	ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
}

// Send delivers text to a chat, rendering choices as an inline keyboard.
func (c *Client) Send(ctx context.Context, externalID int64, text string, choices [][]ports.Choice) error {
	req := sendMessageReq{ChatID: externalID, Text: text}
	if len(choices) > 0 {
		kb := &inlineKeyboard{}
		for _, row := range choices {
			var buttons []inlineButton
			for _, ch := range row {
				buttons = append(buttons, inlineButton{Text: ch.Label, CallbackData: ch.Payload})
			}
			kb.InlineKeyboard = append(kb.InlineKeyboard, buttons)
		}
		req.ReplyMarkup = kb
	}

	var out json.RawMessage
	return c.call(ctx, "sendMessage", req, &out)
}

func (c *Client) call(ctx context.Context, method string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	url := c.baseURL + c.token + "/" + method
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("telegram %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram %s http %d: %s", method, resp.StatusCode, string(respRaw))
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(respRaw, &envelope); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s rejected: %s", method, envelope.Description)
	}
	if out != nil {
		return json.Unmarshal(envelope.Result, out)
	}
	return nil
}
