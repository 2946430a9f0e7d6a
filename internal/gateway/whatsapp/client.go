package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client — HTTP-клиент Baileys-шлюза WhatsApp.
//
// Шлюз держит по сессии на пользователя; все пути параметризуются
// sessionID. Отправка — сетевой вызов на десятки секунд, поэтому
// таймауты разделены: короткий для статусов, длинный для send/reconnect.
type Client struct {
	baseURL string
	token   string
	short   time.Duration
	long    time.Duration
	http    *http.Client
	logger  *slog.Logger
}

// Config — конфигурация клиента шлюза.
type Config struct {
	BaseURL string
	Token   string
	Short   time.Duration // таймаут статусных вызовов (default: 20s)
	Long    time.Duration // таймаут send/reconnect (default: 45s)
	Logger  *slog.Logger
}

// NewClient создаёт новый Client.
func NewClient(cfg Config) *Client {
	short := cfg.Short
	if short <= 0 {
		short = 20 * time.Second
	}
	long := cfg.Long
	if long <= 0 {
		long = 45 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		short:   short,
		long:    long,
		http:    &http.Client{},
		logger:  logger,
	}
}

// SendResult — ответ шлюза на отправку сообщения.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// InstanceStatus — состояние сессии шлюза.
type InstanceStatus struct {
	Success   bool   `json:"success"`
	Connected bool   `json:"connected"`
	State     string `json:"state"`
	QRCode    string `json:"qr_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// gatewayResponse — сырой ответ шлюза. Поля перекрываются между
// эндпоинтами, декодируем всё одним типом.
type gatewayResponse struct {
	Success     *bool  `json:"success"`
	Error       string `json:"error"`
	MessageID   string `json:"messageId"`
	ID          string `json:"id"`
	Connected   bool   `json:"connected"`
	State       string `json:"state"`
	QRCode      string `json:"qrCode"`
	PairingCode string `json:"pairingCode"`
	Code        string `json:"code"`
}

// NormalizePhone приводит номер к цифровой строке с кодом страны 55.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return "", fmt.Errorf("invalid phone number %q", phone)
	}
	if !strings.HasPrefix(clean, "55") {
		clean = "55" + clean
	}
	return clean, nil
}

// SendMessage отправляет сообщение через POST /send/{sessionID}.
//
// Номер нормализуется перед отправкой. Если шлюз ответил "not connected",
// лучшая попытка восстановить сессию (/reconnect) делается сразу —
// сам вызов всё равно возвращается как неуспешный, повтор произойдёт
// на следующем тике.
func (c *Client) SendMessage(ctx context.Context, phone, content string, sessionID int64) (*SendResult, error) {
	clean, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	body := map[string]string{"number": clean, "message": content}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/send/%d", sessionID), body, c.long)
	if err != nil {
		return nil, err
	}

	if resp.ok() {
		c.logger.Info("whatsapp message sent", "recipient", clean, "session_id", sessionID)
		msgID := resp.MessageID
		if msgID == "" {
			msgID = resp.ID
		}
		return &SendResult{Success: true, MessageID: msgID}, nil
	}

	if strings.Contains(strings.ToLower(resp.Error), "not connected") {
		if _, rerr := c.Reconnect(ctx, sessionID); rerr != nil {
			c.logger.Warn("session restore failed", "session_id", sessionID, "error", rerr)
		}
	}

	return &SendResult{Success: false, Error: resp.errText()}, nil
}

// Health проверяет доступность шлюза: GET /health.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, c.short)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("gateway unhealthy: %s", resp.errText())
	}
	return nil
}

// Status возвращает состояние сессии: GET /status/{sessionID}.
func (c *Client) Status(ctx context.Context, sessionID int64) (*InstanceStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/status/%d", sessionID), nil, c.short)
	if err != nil {
		return nil, err
	}
	return &InstanceStatus{
		Success:   resp.ok(),
		Connected: resp.Connected,
		State:     stateOrUnknown(resp.State),
		QRCode:    resp.QRCode,
		Error:     resp.Error,
	}, nil
}

// Reconnect восстанавливает сессию: POST /reconnect/{sessionID}.
func (c *Client) Reconnect(ctx context.Context, sessionID int64) (bool, error) {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/reconnect/%d", sessionID), nil, c.long)
	if err != nil {
		return false, err
	}
	return resp.ok(), nil
}

// Disconnect разрывает сессию: POST /disconnect/{sessionID}.
func (c *Client) Disconnect(ctx context.Context, sessionID int64) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/disconnect/%d", sessionID), nil, c.short)
	return err
}

// RequestPairingCode запрашивает код сопряжения:
// POST /pairing-code/{sessionID}. Не все версии шлюза реализуют
// эндпоинт — 404 превращается в понятную ошибку.
func (c *Client) RequestPairingCode(ctx context.Context, sessionID int64, phone string) (string, error) {
	clean, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/pairing-code/%d", sessionID),
		map[string]string{"phoneNumber": clean}, c.long)
	if err != nil {
		return "", err
	}
	if resp == nil || !resp.ok() {
		if resp != nil && resp.Error == "not found" {
			return "", fmt.Errorf("pairing-code endpoint not available on server")
		}
		return "", fmt.Errorf("pairing code request failed: %s", resp.errText())
	}
	code := resp.PairingCode
	if code == "" {
		code = resp.Code
	}
	return code, nil
}

// ForceNewQR принудительно получает новый QR-код:
// best-effort disconnect → reconnect → polling статуса до появления qrCode.
func (c *Client) ForceNewQR(ctx context.Context, sessionID int64, maxWait time.Duration) (string, error) {
	// disconnect игнорирует ошибки — сессии может не быть вовсе
	_ = c.Disconnect(ctx, sessionID)

	ok, err := c.Reconnect(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("reconnect: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("reconnect rejected by gateway")
	}

	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		st, err := c.Status(ctx, sessionID)
		if err == nil && st.Success && st.QRCode != "" {
			return st.QRCode, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return "", fmt.Errorf("qr code not available after reconnect")
}

// do выполняет HTTP-вызов и нормализует ответ шлюза.
func (c *Client) do(ctx context.Context, method, path string, body any, timeout time.Duration) (*gatewayResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &gatewayResponse{Error: "not found"}, nil
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &gatewayResponse{Error: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}, nil
	}

	var gw gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		// не-JSON тело при 2xx считаем успехом
		return &gatewayResponse{}, nil
	}
	return &gw, nil
}

// ok трактует отсутствие поля success при 2xx как успех.
func (g *gatewayResponse) ok() bool {
	return g.Success == nil && g.Error == "" || g.Success != nil && *g.Success
}

func (g *gatewayResponse) errText() string {
	if g.Error != "" {
		return g.Error
	}
	return "send failed"
}

func stateOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
