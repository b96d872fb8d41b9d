package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

// KeywordHandler обслуживает операторское управление отслеживаемыми
// ключевыми словами сканера и разбор кандидатов, предложенных движком
// обнаружения.
//
// Endpoints:
// - GET    /api/v1/keywords                  - все слова
// - POST   /api/v1/keywords                  - добавить слово вручную
// - DELETE /api/v1/keywords/{id}             - снять с наблюдения
// - POST   /api/v1/keywords/{id}/deactivate  - приостановить
// - POST   /api/v1/keywords/{id}/reactivate  - возобновить
// - GET    /api/v1/candidates                - кандидаты, ожидающие решения
// - POST   /api/v1/candidates/{id}/approve   - подтвердить и добавить слово
// - POST   /api/v1/candidates/{id}/reject    - отклонить кандидата
type KeywordHandler struct {
	keywords *service.KeywordService
}

func NewKeywordHandler(keywords *service.KeywordService) *KeywordHandler {
	return &KeywordHandler{keywords: keywords}
}

func (h *KeywordHandler) GetKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.keywords.GetAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load keywords")
		return
	}
	respondJSON(w, http.StatusOK, keywords)
}

type addKeywordRequest struct {
	Keyword  string `json:"keyword"`
	ParentID *int   `json:"parent_keyword_id,omitempty"`
}

func (h *KeywordHandler) AddKeyword(w http.ResponseWriter, r *http.Request) {
	var req addKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	k, err := h.keywords.AddKeyword(req.Keyword, models.KeywordSourceManual, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKeywordEmpty):
			respondError(w, http.StatusBadRequest, "keyword cannot be empty")
		case errors.Is(err, service.ErrKeywordExists):
			respondError(w, http.StatusConflict, "keyword already watched")
		default:
			respondError(w, http.StatusInternalServerError, "failed to add keyword")
		}
		return
	}
	respondJSON(w, http.StatusCreated, k)
}

func (h *KeywordHandler) RemoveKeyword(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.keywords.Remove(id); err != nil {
		if errors.Is(err, service.ErrKeywordNotFound) {
			respondError(w, http.StatusNotFound, "keyword not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to remove keyword")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "removed"})
}

func (h *KeywordHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.keywords.Deactivate(id); err != nil {
		if errors.Is(err, service.ErrKeywordNotFound) {
			respondError(w, http.StatusNotFound, "keyword not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to deactivate keyword")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "deactivated"})
}

func (h *KeywordHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.keywords.Reactivate(id); err != nil {
		if errors.Is(err, service.ErrKeywordNotFound) {
			respondError(w, http.StatusNotFound, "keyword not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to reactivate keyword")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "reactivated"})
}

func (h *KeywordHandler) GetPendingCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.keywords.GetPendingCandidates()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load candidates")
		return
	}
	respondJSON(w, http.StatusOK, candidates)
}

func (h *KeywordHandler) ApproveCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	k, err := h.keywords.ApproveCandidate(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKeywordCandidateGone):
			respondError(w, http.StatusNotFound, "candidate not found")
		case errors.Is(err, service.ErrKeywordExists):
			respondError(w, http.StatusConflict, "keyword already watched")
		default:
			respondError(w, http.StatusInternalServerError, "failed to approve candidate")
		}
		return
	}
	respondJSON(w, http.StatusOK, k)
}

func (h *KeywordHandler) RejectCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.keywords.RejectCandidate(id); err != nil {
		if errors.Is(err, service.ErrKeywordCandidateGone) {
			respondError(w, http.StatusNotFound, "candidate not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to reject candidate")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "rejected"})
}
