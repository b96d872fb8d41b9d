package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

// MonitoredItemHandler обслуживает операторский просмотр отслеживаемых
// лотов аукциона.
//
// Endpoints:
// - GET  /api/v1/items/{id}          - один лот
// - POST /api/v1/items               - поставить лот на мониторинг
// - POST /api/v1/items/{id}/delist   - вручную снять листинг с маркетплейса
type MonitoredItemHandler struct {
	items *service.MonitoredItemService
}

func NewMonitoredItemHandler(items *service.MonitoredItemService) *MonitoredItemHandler {
	return &MonitoredItemHandler{items: items}
}

func (h *MonitoredItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrMonitoredItemNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

type startMonitoringRequest struct {
	AuctionID            string `json:"auction_id"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	ImageURL             string `json:"image_url"`
	CurrentPrice         int    `json:"current_price"`
	StartPrice           int    `json:"start_price"`
	BuyNowPrice          int    `json:"buy_now_price"`
	EndTime              string `json:"end_time"`
	CheckIntervalSeconds int    `json:"check_interval_seconds"`
	AutoAdjustInterval   bool   `json:"auto_adjust_interval"`
}

func (h *MonitoredItemHandler) StartMonitoring(w http.ResponseWriter, r *http.Request) {
	var req startMonitoringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AuctionID == "" || req.URL == "" {
		respondError(w, http.StatusBadRequest, "auction_id and url are required")
		return
	}

	endTime, err := parseOptionalTime(req.EndTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "end_time must be RFC3339")
		return
	}

	item := &models.MonitoredItem{
		AuctionID:            req.AuctionID,
		Title:                req.Title,
		URL:                  req.URL,
		ImageURL:             req.ImageURL,
		CurrentPrice:         req.CurrentPrice,
		StartPrice:           req.StartPrice,
		BuyNowPrice:          req.BuyNowPrice,
		EndTime:              endTime,
		Status:               models.ItemStatusActive,
		CheckIntervalSeconds: req.CheckIntervalSeconds,
		AutoAdjustInterval:   req.AutoAdjustInterval,
	}

	created, err := h.items.StartMonitoring(item)
	if err != nil {
		if errors.Is(err, service.ErrMonitoredItemExists) {
			respondError(w, http.StatusConflict, "auction already monitored")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to start monitoring")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *MonitoredItemHandler) Delist(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.items.Delist(id, false); err != nil {
		if errors.Is(err, service.ErrMonitoredItemNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delist item")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "delisted"})
}
