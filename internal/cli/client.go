package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// StatusResponse — состояние планировщика из API.
type StatusResponse struct {
	Running  bool            `json:"running"`
	Timezone string          `json:"timezone"`
	Cadences []CadenceStatus `json:"cadences"`
}

// CadenceStatus — каденция планировщика.
type CadenceStatus struct {
	Name    string `json:"name"`
	NextDue string `json:"next_due"`
}

// ClientResponse — клиент из API.
type ClientResponse struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number"`
	PlanName    string  `json:"plan_name,omitempty"`
	PlanPrice   float64 `json:"plan_price,omitempty"`
	Server      string  `json:"server,omitempty"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// MessageLogResponse — запись журнала доставки из API.
type MessageLogResponse struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	ClientID       int64  `json:"client_id"`
	TemplateID     int64  `json:"template_id"`
	RecipientPhone string `json:"recipient_phone"`
	SentAt         string `json:"sent_at"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
}

// RemindResponse — итог ручной отправки напоминания.
type RemindResponse struct {
	Sent int `json:"sent"`
}

// WhatsAppStatusResponse — состояние сессии WhatsApp-шлюза.
type WhatsAppStatusResponse struct {
	Connected bool   `json:"connected"`
	State     string `json:"state,omitempty"`
	QRCode    string `json:"qr_code,omitempty"`
}

// WhatsAppReconnectResponse — итог запроса на переподключение.
type WhatsAppReconnectResponse struct {
	Accepted bool `json:"accepted"`
}

// --- Request types ---

// RemindRequest — запрос ручной отправки.
type RemindRequest struct {
	TemplateType string `json:"template_type,omitempty"`
}

// ListClientsOpts — параметры фильтрации клиентов.
type ListClientsOpts struct {
	UserID int64
	Status string
	Limit  int
}

// ListLogsOpts — параметры фильтрации журнала.
type ListLogsOpts struct {
	UserID int64
	Limit  int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Cobrador API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetStatus возвращает состояние планировщика.
func (c *Client) GetStatus() (*StatusResponse, error) {
	var st StatusResponse
	err := c.get("/api/v1/status", &st)
	return &st, err
}

// ListClients возвращает клиентов с фильтрацией.
func (c *Client) ListClients(opts ListClientsOpts) ([]ClientResponse, error) {
	params := url.Values{}
	if opts.UserID > 0 {
		params.Set("user_id", fmt.Sprintf("%d", opts.UserID))
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var clients []ClientResponse
	err := c.list("/api/v1/clients", params, &clients)
	return clients, err
}

// GetClient возвращает клиента по ID.
func (c *Client) GetClient(id int64) (*ClientResponse, error) {
	var client ClientResponse
	err := c.get(fmt.Sprintf("/api/v1/clients/%d", id), &client)
	return &client, err
}

// Remind отправляет напоминание клиенту вручную.
func (c *Client) Remind(id int64, templateType string) (*RemindResponse, error) {
	var body any
	if templateType != "" {
		body = RemindRequest{TemplateType: templateType}
	}

	var res RemindResponse
	err := c.post(fmt.Sprintf("/api/v1/clients/%d/remind", id), body, &res)
	return &res, err
}

// ListLogs возвращает историю доставки.
func (c *Client) ListLogs(opts ListLogsOpts) ([]MessageLogResponse, error) {
	params := url.Values{}
	if opts.UserID > 0 {
		params.Set("user_id", fmt.Sprintf("%d", opts.UserID))
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var logs []MessageLogResponse
	err := c.list("/api/v1/logs", params, &logs)
	return logs, err
}

// WhatsAppStatus возвращает состояние сессии шлюза.
func (c *Client) WhatsAppStatus(sessionID int64) (*WhatsAppStatusResponse, error) {
	var st WhatsAppStatusResponse
	err := c.get(fmt.Sprintf("/api/v1/whatsapp/%d/status", sessionID), &st)
	return &st, err
}

// WhatsAppReconnect запрашивает переподключение сессии.
func (c *Client) WhatsAppReconnect(sessionID int64) (*WhatsAppReconnectResponse, error) {
	var res WhatsAppReconnectResponse
	err := c.post(fmt.Sprintf("/api/v1/whatsapp/%d/reconnect", sessionID), nil, &res)
	return &res, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
