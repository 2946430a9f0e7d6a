package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client — минимальный клиент Telegram Bot API.
//
// Сервис только отправляет: отчёты и уведомления владельцам.
// Командные обработчики бота живут в презентационном слое и сюда
// не входят.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient создаёт новый Client.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: "https://api.telegram.org",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) url(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// SendMessage отправляет текст в чат. Markdown включён — отчёты и
// уведомления используют *bold* разметку.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	body := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("sendMessage"), bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %s", resp.Status)
	}

	var wrapper struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !wrapper.OK {
		return fmt.Errorf("telegram: %s", wrapper.Description)
	}
	return nil
}

// SendNotification — алиас SendMessage для читаемости вызовов
// из планировщика (контракт канала "chat" уведомлений).
func (c *Client) SendNotification(ctx context.Context, chatID int64, text string) error {
	return c.SendMessage(ctx, chatID, text)
}
