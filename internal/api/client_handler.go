package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
	"github.com/shaiso/cobrador/internal/repo"
)

// ListClients возвращает список клиентов с фильтрацией.
// GET /api/v1/clients?user_id=...&status=...&limit=...
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	filter := repo.ClientFilter{}

	// Парсим query параметры
	if userIDStr := r.URL.Query().Get("user_id"); userIDStr != "" {
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			BadRequest(w, "invalid user_id")
			return
		}
		filter.UserID = &userID
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := domain.ClientStatus(statusStr)
		if status != domain.ClientActive && status != domain.ClientInactive {
			BadRequest(w, "invalid status")
			return
		}
		filter.Status = &status
	}

	filter.Limit = 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			BadRequest(w, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	clients, err := h.clients.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ClientResponse, len(clients))
	for i := range clients {
		result[i] = ClientFromDomain(&clients[i])
	}

	List(w, result, len(result))
}

// GetClient возвращает клиента по ID.
// GET /api/v1/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequest(w, "invalid client id")
		return
	}

	client, err := h.clients.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "client not found") {
		return
	}

	Success(w, ClientFromDomain(client))
}

// RemindClient отправляет напоминание клиенту вручную, минуя окна
// расписания. Дедупликация журнала действует и здесь: повторный вызов
// в тот же день даст sent=0.
// POST /api/v1/clients/{id}/remind
func (h *Handler) RemindClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequest(w, "invalid client id")
		return
	}

	var req RemindRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	tplType := domain.TemplateReminderDueDate
	if req.TemplateType != "" {
		tplType = domain.TemplateType(req.TemplateType)
		if !validTemplateType(tplType) {
			BadRequest(w, "invalid template_type")
			return
		}
	}

	client, err := h.clients.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "client not found") {
		return
	}

	user, err := h.users.GetByID(r.Context(), client.UserID)
	if HandleRepoError(w, h.logger, err, "client owner not found") {
		return
	}

	sent, err := h.sender.SendReminders(r.Context(), user, []domain.Client{*client}, tplType, time.Now().In(h.loc))
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, RemindResponse{Sent: sent})
}

// validTemplateType проверяет, что вид шаблона известен.
func validTemplateType(t domain.TemplateType) bool {
	switch t {
	case domain.TemplateReminder2Days,
		domain.TemplateReminder1Day,
		domain.TemplateReminderDueDate,
		domain.TemplateReminderOverdue,
		domain.TemplateWelcome,
		domain.TemplateRenewal:
		return true
	default:
		return false
	}
}
