package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Scheduler
	mux.Handle("GET /api/v1/status", chain(http.HandlerFunc(h.GetStatus)))

	// Clients
	mux.Handle("GET /api/v1/clients", chain(http.HandlerFunc(h.ListClients)))
	mux.Handle("GET /api/v1/clients/{id}", chain(http.HandlerFunc(h.GetClient)))
	mux.Handle("POST /api/v1/clients/{id}/remind", chain(http.HandlerFunc(h.RemindClient)))

	// Message log
	mux.Handle("GET /api/v1/logs", chain(http.HandlerFunc(h.ListLogs)))

	// WhatsApp gateway relay
	mux.Handle("GET /api/v1/whatsapp/{session}/status", chain(http.HandlerFunc(h.WhatsAppStatus)))
	mux.Handle("POST /api/v1/whatsapp/{session}/reconnect", chain(http.HandlerFunc(h.WhatsAppReconnect)))
}
