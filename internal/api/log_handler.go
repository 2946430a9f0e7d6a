package api

import (
	"net/http"
	"strconv"

	"github.com/shaiso/cobrador/internal/repo"
)

// ListLogs возвращает историю доставки.
// GET /api/v1/logs?user_id=...&limit=...
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	filter := repo.LogFilter{}

	if userIDStr := r.URL.Query().Get("user_id"); userIDStr != "" {
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			BadRequest(w, "invalid user_id")
			return
		}
		filter.UserID = &userID
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

	logs, err := h.logs.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]MessageLogResponse, len(logs))
	for i := range logs {
		result[i] = MessageLogFromDomain(&logs[i])
	}

	List(w, result, len(result))
}
