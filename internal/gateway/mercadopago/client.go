package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client — клиент Mercado Pago для проверки статуса платежей.
//
// Воркер сверки опрашивает статус по payment_id; webhook-семантика
// шлюза остаётся снаружи (см. mq consumer payments.updated).
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient создаёт новый Client.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: "https://api.mercadopago.com",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// PaymentStatus — ответ на проверку статуса платежа.
type PaymentStatus struct {
	Success      bool   `json:"success"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CheckPaymentStatus запрашивает GET /v1/payments/{id}.
//
// Сетевые и HTTP-ошибки не возвращаются как error: воркер сверки
// обрабатывает их per-item, поэтому результат всегда приходит в
// PaymentStatus (success=false + error).
func (c *Client) CheckPaymentStatus(ctx context.Context, paymentID string) *PaymentStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/payments/%s", c.baseURL, paymentID), nil)
	if err != nil {
		return &PaymentStatus{Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &PaymentStatus{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &PaymentStatus{Error: "payment not found"}
	}
	if resp.StatusCode >= 400 {
		return &PaymentStatus{Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var payment struct {
		Status       string `json:"status"`
		StatusDetail string `json:"status_detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return &PaymentStatus{Error: fmt.Sprintf("decode response: %v", err)}
	}

	return &PaymentStatus{
		Success:      true,
		Status:       payment.Status,
		StatusDetail: payment.StatusDetail,
	}
}

// SetBaseURL переопределяет адрес API (для тестов).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}
