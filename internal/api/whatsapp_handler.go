package api

import (
	"net/http"
	"strconv"
)

// WhatsAppStatus возвращает состояние сессии WhatsApp-шлюза.
// GET /api/v1/whatsapp/{session}/status
func (h *Handler) WhatsAppStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("session"), 10, 64)
	if err != nil {
		BadRequest(w, "invalid session id")
		return
	}

	st, err := h.wa.Status(r.Context(), sessionID)
	if err != nil {
		BadGateway(w, "whatsapp gateway unavailable")
		return
	}

	Success(w, WhatsAppStatusResponse{
		Connected: st.Connected,
		State:     st.State,
		QRCode:    st.QRCode,
	})
}

// WhatsAppReconnect запрашивает переподключение сессии.
// POST /api/v1/whatsapp/{session}/reconnect
func (h *Handler) WhatsAppReconnect(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("session"), 10, 64)
	if err != nil {
		BadRequest(w, "invalid session id")
		return
	}

	ok, err := h.wa.Reconnect(r.Context(), sessionID)
	if err != nil {
		BadGateway(w, "whatsapp gateway unavailable")
		return
	}

	Success(w, WhatsAppReconnectResponse{Accepted: ok})
}
