package handlers

import (
	"encoding/json"
	"net/http"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// ReferenceHandler выставляет справочные данные листинга (пресеты по ASIN,
// шаблоны описания состояния) — тонкий CRUD без отдельного сервисного
// слоя, т.к. эти данные не несут бизнес-правил сверх хранения.
//
// Endpoints:
// - GET  /api/v1/presets?asin=...        - история пресетов по ASIN
// - POST /api/v1/presets                 - сохранить новый пресет
// - GET  /api/v1/condition-templates     - все шаблоны состояния
type ReferenceHandler struct {
	presets   *repository.ListingPresetRepository
	templates *repository.ConditionTemplateRepository
}

func NewReferenceHandler(presets *repository.ListingPresetRepository, templates *repository.ConditionTemplateRepository) *ReferenceHandler {
	return &ReferenceHandler{presets: presets, templates: templates}
}

func (h *ReferenceHandler) GetPresetHistory(w http.ResponseWriter, r *http.Request) {
	asin := r.URL.Query().Get("asin")
	if asin == "" {
		respondError(w, http.StatusBadRequest, "asin query parameter is required")
		return
	}

	presets, err := h.presets.GetHistoryByASIN(asin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load presets")
		return
	}
	respondJSON(w, http.StatusOK, presets)
}

type createPresetRequest struct {
	ASIN            string `json:"asin"`
	Condition       string `json:"condition"`
	ConditionNote   string `json:"condition_note"`
	ShippingPattern string `json:"shipping_pattern"`
}

func (h *ReferenceHandler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ASIN == "" {
		respondError(w, http.StatusBadRequest, "asin is required")
		return
	}

	preset := &models.ListingPreset{
		ASIN:            req.ASIN,
		Condition:       req.Condition,
		ConditionNote:   req.ConditionNote,
		ShippingPattern: req.ShippingPattern,
	}
	if err := h.presets.Create(preset); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create preset")
		return
	}
	respondJSON(w, http.StatusCreated, preset)
}

func (h *ReferenceHandler) GetConditionTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.GetAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load condition templates")
		return
	}
	respondJSON(w, http.StatusOK, templates)
}
