package api

import (
	"net/http"
)

// GetStatus возвращает состояние планировщика.
// GET /api/v1/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	Success(w, StatusResponse{
		Running:  h.sched.IsRunning(),
		Timezone: h.loc.String(),
		Cadences: h.sched.Status(),
	})
}
