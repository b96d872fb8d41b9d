package service

import (
	"context"
	"errors"
	"fmt"

	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
)

// Ошибки сервиса листинга
var (
	ErrListingConditionRestricted = errors.New("condition restricted for this asin")
	ErrListingAlreadyActive       = errors.New("item already has an active listing")
)

// ListingService orchestrates the marketplace side of turning a deal alert
// into a live offer: restriction check, condition/shipping preset
// resolution, listing creation, and persisting the result back onto the
// monitored item.
type ListingService struct {
	sdk         marketplace.SDK
	sellerID    string
	itemService *MonitoredItemService
	presetRepo  ListingPresetRepositoryInterface
}

// NewListingService создает новый экземпляр ListingService.
func NewListingService(sdk marketplace.SDK, sellerID string, itemService *MonitoredItemService, presetRepo ListingPresetRepositoryInterface) *ListingService {
	return &ListingService{sdk: sdk, sellerID: sellerID, itemService: itemService, presetRepo: presetRepo}
}

// CreateListingInput описывает входные данные для создания листинга по
// лоту, уже подтверждённому оператором.
type CreateListingInput struct {
	ItemID          int
	ASIN            string
	SKU             string
	ProductType     string
	Condition       string
	ConditionNote   string
	ShippingPattern string
	SellPriceJPY    int
	ImageURLs       []string
}

// CreateListing проверяет ограничения по состоянию товара, сохраняет
// листинг на маркетплейсе и фиксирует результат на MonitoredItem.
func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (*marketplace.ListingResult, error) {
	item, err := s.itemService.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.IsListedOnAmazon() {
		return nil, ErrListingAlreadyActive
	}

	restrictions, err := s.sdk.GetListingRestrictions(ctx, in.ASIN, in.Condition)
	if err != nil {
		return nil, err
	}
	if len(restrictions) > 0 {
		return nil, ErrListingConditionRestricted
	}

	attrs := map[string]interface{}{
		"condition_type": in.Condition,
		"condition_note": in.ConditionNote,
		"list_price":     in.SellPriceJPY,
	}

	result, err := s.sdk.CreateListing(ctx, s.sellerID, in.SKU, in.ProductType, attrs, false)
	if err != nil {
		return nil, err
	}

	if len(in.ImageURLs) > 0 {
		if err := s.sdk.PatchOfferImages(ctx, s.sellerID, in.SKU, in.ImageURLs); err != nil {
			return nil, fmt.Errorf("patch offer images: %w", err)
		}
	}

	pattern := marketplace.ShippingPatternByKey("", in.ShippingPattern)
	leadTimeDays := 0
	if pattern != nil {
		leadTimeDays = pattern.LeadTimeDays
		if err := s.sdk.PatchListingLeadTime(ctx, s.sellerID, in.SKU, leadTimeDays); err != nil {
			return nil, fmt.Errorf("patch lead time: %w", err)
		}
	}

	if s.presetRepo != nil {
		_ = s.presetRepo.Create(&models.ListingPreset{
			ASIN:            in.ASIN,
			Condition:       in.Condition,
			ConditionNote:   in.ConditionNote,
			ShippingPattern: in.ShippingPattern,
		})
	}

	if err := s.itemService.AttachListing(in.ItemID, in.ASIN, in.SKU, in.Condition, in.ConditionNote, in.ShippingPattern, leadTimeDays); err != nil {
		return nil, err
	}

	return result, nil
}

// SyncPrice pushes an updated sell price to an existing listing.
func (s *ListingService) SyncPrice(ctx context.Context, sku string, priceJPY int) error {
	return s.sdk.PatchListingPrice(ctx, s.sellerID, sku, priceJPY)
}

// Delist removes the offer from the marketplace and marks the monitored
// item delisted.
func (s *ListingService) Delist(ctx context.Context, itemID int, sku string, auto bool) error {
	if err := s.sdk.DeleteListing(ctx, s.sellerID, sku); err != nil {
		return err
	}
	return s.itemService.Delist(itemID, auto)
}
