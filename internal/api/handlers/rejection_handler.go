package handlers

import (
	"net/http"

	"arbitrage/internal/service"
)

// RejectionHandler даёт оператору видимость и ручную коррекцию выученных
// паттернов отклонения (accessory word, blocked auction/ASIN pair и т.д.).
//
// Endpoints:
// - GET  /api/v1/rejections?type=...       - активные паттерны заданного типа
// - POST /api/v1/rejections/{id}/deactivate - выключить ложное срабатывание
type RejectionHandler struct {
	rejections *service.RejectionService
}

func NewRejectionHandler(rejections *service.RejectionService) *RejectionHandler {
	return &RejectionHandler{rejections: rejections}
}

func (h *RejectionHandler) GetActivePatterns(w http.ResponseWriter, r *http.Request) {
	patternType := r.URL.Query().Get("type")
	if patternType == "" {
		respondError(w, http.StatusBadRequest, "type query parameter is required")
		return
	}

	patterns, err := h.rejections.GetActivePatterns(patternType)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load rejection patterns")
		return
	}
	respondJSON(w, http.StatusOK, patterns)
}

func (h *RejectionHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.rejections.Deactivate(id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to deactivate pattern")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "deactivated"})
}
