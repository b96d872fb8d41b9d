package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"arbitrage/internal/service"
)

// DealAlertHandler обслуживает операторский просмотр и разбор найденных
// сделок (DealAlert).
//
// Endpoints:
// - GET    /api/v1/deals              - активные алерты (пагинация)
// - GET    /api/v1/deals/history      - вся история для анализа
// - GET    /api/v1/deals/stats        - доля отклонённых алертов
// - GET    /api/v1/deals/{id}         - один алерт
// - POST   /api/v1/deals/{id}/reject  - отклонить с причиной и заметкой
// - POST   /api/v1/deals/{id}/list    - пометить как выставленный на маркетплейсе
type DealAlertHandler struct {
	deals *service.DealAlertService
}

func NewDealAlertHandler(deals *service.DealAlertService) *DealAlertHandler {
	return &DealAlertHandler{deals: deals}
}

func (h *DealAlertHandler) GetActiveDeals(w http.ResponseWriter, r *http.Request) {
	limit := queryIntDefault(r, "limit", 50)
	offset := queryIntDefault(r, "offset", 0)

	deals, err := h.deals.GetActiveDeals(limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load active deals")
		return
	}
	respondJSON(w, http.StatusOK, deals)
}

func (h *DealAlertHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	deals, err := h.deals.GetHistoryForAnalysis()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load deal history")
		return
	}
	respondJSON(w, http.StatusOK, deals)
}

func (h *DealAlertHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	rejected, total, err := h.deals.GetRejectionStats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute rejection stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"rejected": rejected, "total": total})
}

func (h *DealAlertHandler) GetDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	deal, err := h.deals.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrDealAlertNotFound) {
			respondError(w, http.StatusNotFound, "deal not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load deal")
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

type rejectDealRequest struct {
	Reason string `json:"reason"`
	Note   string `json:"note"`
}

func (h *DealAlertHandler) RejectDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req rejectDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		respondError(w, http.StatusBadRequest, "reason is required")
		return
	}

	if err := h.deals.Reject(id, req.Reason, req.Note); err != nil {
		if errors.Is(err, service.ErrDealAlertNotFound) {
			respondError(w, http.StatusNotFound, "deal not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to reject deal")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "rejected"})
}

func (h *DealAlertHandler) MarkListed(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.deals.MarkListed(id); err != nil {
		if errors.Is(err, service.ErrDealAlertNotFound) {
			respondError(w, http.StatusNotFound, "deal not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to mark deal listed")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "listed"})
}
