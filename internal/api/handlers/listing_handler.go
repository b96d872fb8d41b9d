package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"arbitrage/internal/service"
)

// ListingHandler переводит подтверждённый оператором DealAlert в живой
// листинг на маркетплейсе.
//
// Endpoints:
// - POST /api/v1/listings              - создать листинг по подтверждённому лоту
// - POST /api/v1/listings/{sku}/price  - синхронизировать цену листинга
// - POST /api/v1/listings/{sku}/delist - снять листинг вручную
type ListingHandler struct {
	listings *service.ListingService
}

func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

type createListingRequest struct {
	ItemID          int      `json:"item_id"`
	ASIN            string   `json:"asin"`
	SKU             string   `json:"sku"`
	ProductType     string   `json:"product_type"`
	Condition       string   `json:"condition"`
	ConditionNote   string   `json:"condition_note"`
	ShippingPattern string   `json:"shipping_pattern"`
	SellPriceJPY    int      `json:"sell_price_jpy"`
	ImageURLs       []string `json:"image_urls"`
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == 0 || req.ASIN == "" || req.SKU == "" {
		respondError(w, http.StatusBadRequest, "item_id, asin and sku are required")
		return
	}

	result, err := h.listings.CreateListing(r.Context(), service.CreateListingInput{
		ItemID:          req.ItemID,
		ASIN:            req.ASIN,
		SKU:             req.SKU,
		ProductType:     req.ProductType,
		Condition:       req.Condition,
		ConditionNote:   req.ConditionNote,
		ShippingPattern: req.ShippingPattern,
		SellPriceJPY:    req.SellPriceJPY,
		ImageURLs:       req.ImageURLs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingConditionRestricted):
			respondError(w, http.StatusConflict, "condition restricted for this asin")
		case errors.Is(err, service.ErrListingAlreadyActive):
			respondError(w, http.StatusConflict, "item already has an active listing")
		case errors.Is(err, service.ErrMonitoredItemNotFound):
			respondError(w, http.StatusNotFound, "item not found")
		default:
			respondError(w, http.StatusInternalServerError, "failed to create listing")
		}
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

type syncPriceRequest struct {
	PriceJPY int `json:"price_jpy"`
}

func (h *ListingHandler) SyncPrice(w http.ResponseWriter, r *http.Request) {
	sku := pathString(r, "sku")
	var req syncPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.listings.SyncPrice(r.Context(), sku, req.PriceJPY); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to sync price")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "price synced"})
}

func (h *ListingHandler) Delist(w http.ResponseWriter, r *http.Request) {
	sku := pathString(r, "sku")
	itemID := queryIntDefault(r, "item_id", 0)
	if itemID == 0 {
		respondError(w, http.StatusBadRequest, "item_id query parameter is required")
		return
	}

	if err := h.listings.Delist(r.Context(), itemID, sku, false); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delist")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "delisted"})
}
