package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"arbitrage/pkg/ratelimit"
	"arbitrage/pkg/utils"
)

var mpJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// workerCount bounds how many blocking vendor-SDK calls run at once —
// the vendor client has no async mode of its own, so every call is
// dispatched through a small worker pool rather than let an unbounded
// number of goroutines hit the SP-API rate limiter simultaneously.
const workerCount = 4

// feeCacheMax caps the in-memory referral-fee cache — fee percentage is
// category-dependent and effectively static, so it's evicted wholesale
// (not LRU) once full, same as the analytics search cache.
const feeCacheMax = 200

type call struct {
	fn   func() (interface{}, error)
	done chan result
}

type result struct {
	val interface{}
	err error
}

// Client dispatches every SDK call through a fixed worker pool, backed
// by an unexported HTTP client against the marketplace's REST API.
type Client struct {
	jobs chan call
	sdk  *httpSDK

	feeLimiter *ratelimit.RateLimiter
	feeMu      sync.Mutex
	feeCache   map[string]float64
}

// Config configures the marketplace client's credentials and endpoint.
type Config struct {
	BaseURL       string
	SellerID      string
	RefreshToken  string
	LWAAppID      string
	LWASecret     string
	MarketplaceID string
}

// NewClient starts the worker pool and returns a ready Client.
func NewClient(cfg Config) *Client {
	c := &Client{
		jobs:       make(chan call, 64),
		sdk:        newHTTPSDK(cfg),
		feeLimiter: ratelimit.NewRateLimiter(1, 1),
		feeCache:   make(map[string]float64),
	}
	for i := 0; i < workerCount; i++ {
		go c.runWorker()
	}
	return c
}

func (c *Client) runWorker() {
	for job := range c.jobs {
		val, err := job.fn()
		job.done <- result{val: val, err: err}
	}
}

// dispatch runs fn on a pool worker and blocks for its result, honoring
// ctx cancellation while waiting for a free worker or for the call to
// finish.
func (c *Client) dispatch(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	done := make(chan result, 1)
	select {
	case c.jobs <- call{fn: fn, done: done}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) GetCatalogItem(ctx context.Context, asin string) (*CatalogItem, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) { return c.sdk.getCatalogItem(asin) })
	if err != nil {
		return nil, err
	}
	return v.(*CatalogItem), nil
}

func (c *Client) SearchCatalogItems(ctx context.Context, keywords string, pageSize int) ([]CatalogItem, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) { return c.sdk.searchCatalogItems(keywords, pageSize) })
	if err != nil {
		return nil, err
	}
	return v.([]CatalogItem), nil
}

// GetProductType falls back to "PRODUCT" on any lookup failure — the
// caller always gets a usable product type, never an error.
func (c *Client) GetProductType(ctx context.Context, asin string) (string, error) {
	item, err := c.GetCatalogItem(ctx, asin)
	if err != nil || item == nil || item.ProductType == "" {
		if err != nil {
			utils.Warn("product type lookup failed, defaulting to PRODUCT", utils.ASIN(asin), utils.Err(err))
		}
		return "PRODUCT", nil
	}
	return item.ProductType, nil
}

func (c *Client) GetListingRestrictions(ctx context.Context, asin, conditionType string) ([]ListingRestriction, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) {
		return c.sdk.getListingRestrictions(asin, conditionType)
	})
	if err != nil {
		// Matches the original's allow-by-default posture: a broken
		// restrictions check should not block a listing attempt.
		utils.Warn("listing restrictions check failed", utils.ASIN(asin), utils.Err(err))
		return nil, nil
	}
	return v.([]ListingRestriction), nil
}

func (c *Client) CreateListing(ctx context.Context, sellerID, sku, productType string, attributes map[string]interface{}, offerOnly bool) (*ListingResult, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) {
		return c.sdk.createListing(sellerID, sku, productType, attributes, offerOnly)
	})
	if err != nil {
		return nil, err
	}
	res := v.(*ListingResult)
	if res.Status == ListingStatusInvalid {
		msg := ""
		for i, issue := range res.Issues {
			if i > 0 {
				msg += "; "
			}
			if issue.Message != "" {
				msg += issue.Message
			} else {
				msg += issue.Code
			}
		}
		if msg == "" {
			msg = "unknown error"
		}
		return res, &MarketplaceError{Op: "CreateListing", Message: fmt.Sprintf("listing rejected (INVALID): %s", msg)}
	}
	return res, nil
}

func (c *Client) PatchListingQuantity(ctx context.Context, sellerID, sku string, quantity int) error {
	_, err := c.dispatch(ctx, func() (interface{}, error) {
		return nil, c.sdk.patchListingsItem(sellerID, sku, "/attributes/fulfillment_availability", map[string]interface{}{
			"fulfillment_channel_code": "DEFAULT", "quantity": quantity,
		})
	})
	return err
}

func (c *Client) PatchListingPrice(ctx context.Context, sellerID, sku string, priceJPY int) error {
	_, err := c.dispatch(ctx, func() (interface{}, error) {
		return nil, c.sdk.patchListingsItem(sellerID, sku, "/attributes/purchasable_offer", map[string]interface{}{
			"currency": "JPY", "our_price": []map[string]interface{}{{"schedule": []map[string]interface{}{{"value_with_tax": priceJPY}}}},
		})
	})
	return err
}

func (c *Client) PatchListingLeadTime(ctx context.Context, sellerID, sku string, days int) error {
	_, err := c.dispatch(ctx, func() (interface{}, error) {
		return nil, c.sdk.patchListingsItem(sellerID, sku, "/attributes/lead_time_to_ship_max_days", map[string]interface{}{"value": days})
	})
	return err
}

func (c *Client) PatchListingShippingGroup(ctx context.Context, sellerID, sku, groupName string) error {
	_, err := c.dispatch(ctx, func() (interface{}, error) {
		return nil, c.sdk.patchListingsItem(sellerID, sku, "/attributes/merchant_shipping_group", map[string]interface{}{"value": groupName})
	})
	return err
}

func (c *Client) PatchOfferImages(ctx context.Context, sellerID, sku string, imageURLs []string) error {
	if len(imageURLs) == 0 {
		return nil
	}
	_, err := c.dispatch(ctx, func() (interface{}, error) {
		return nil, c.sdk.patchOfferImages(sellerID, sku, imageURLs)
	})
	return err
}

func (c *Client) GetListing(ctx context.Context, sellerID, sku string) (*Listing, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) { return c.sdk.getListing(sellerID, sku) })
	if err != nil {
		return nil, err
	}
	return v.(*Listing), nil
}

func (c *Client) DeleteListing(ctx context.Context, sellerID, sku string) error {
	_, err := c.dispatch(ctx, func() (interface{}, error) { return nil, c.sdk.deleteListing(sellerID, sku) })
	return err
}

func (c *Client) SubmitPriceFeed(ctx context.Context, sellerID, sku string, priceJPY int) (*FeedResult, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) { return c.sdk.submitPriceFeed(sellerID, sku, priceJPY) })
	if err != nil {
		return nil, err
	}
	return v.(*FeedResult), nil
}

func (c *Client) SubmitInventoryFeed(ctx context.Context, sellerID, sku string, quantity, leadTimeDays int) (*FeedResult, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) {
		return c.sdk.submitInventoryFeed(sellerID, sku, quantity, leadTimeDays)
	})
	if err != nil {
		return nil, err
	}
	return v.(*FeedResult), nil
}

func (c *Client) GetOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) { return c.sdk.getOrderItems(orderID) })
	if err != nil {
		return nil, err
	}
	return v.([]OrderItem), nil
}

func (c *Client) GetNewOrders(ctx context.Context, createdAfterISO string) ([]Order, error) {
	v, err := c.dispatch(ctx, func() (interface{}, error) { return c.sdk.getNewOrders(createdAfterISO) })
	if err != nil {
		return nil, err
	}
	return v.([]Order), nil
}

// GetReferralFeePct returns the cached fee percentage for asin if known,
// otherwise rate-limits to 1 request/second before calling the fee
// estimate endpoint and caching the result. Returns nil, nil when the
// price is non-positive or the estimate has no referral fee entry.
func (c *Client) GetReferralFeePct(ctx context.Context, asin string, priceJPY int) (*float64, error) {
	c.feeMu.Lock()
	if cached, ok := c.feeCache[asin]; ok {
		c.feeMu.Unlock()
		return &cached, nil
	}
	c.feeMu.Unlock()

	if priceJPY <= 0 {
		return nil, nil
	}

	if err := c.feeLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	v, err := c.dispatch(ctx, func() (interface{}, error) { return c.sdk.getReferralFeePct(asin, priceJPY) })
	if err != nil {
		utils.Warn("referral fee estimate failed", utils.ASIN(asin), utils.Err(err))
		return nil, nil
	}
	pct := v.(float64)

	c.feeMu.Lock()
	if len(c.feeCache) >= feeCacheMax {
		c.feeCache = make(map[string]float64)
	}
	c.feeCache[asin] = pct
	c.feeMu.Unlock()

	return &pct, nil
}

// --- httpSDK: the unexported "vendor client" this package fronts ---

type httpSDK struct {
	cfg        Config
	httpClient *http.Client
}

func newHTTPSDK(cfg Config) *httpSDK {
	return &httpSDK{cfg: cfg, httpClient: globalClient()}
}

func (s *httpSDK) getCatalogItem(asin string) (*CatalogItem, error) {
	var item CatalogItem
	if err := s.get("/catalog/2022-04-01/items/"+asin, url.Values{
		"marketplaceIds": {s.cfg.MarketplaceID},
		"includedData":   {"summaries,images,salesRanks"},
	}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *httpSDK) searchCatalogItems(keywords string, pageSize int) ([]CatalogItem, error) {
	var resp struct {
		Items []CatalogItem `json:"items"`
	}
	if err := s.get("/catalog/2022-04-01/items", url.Values{
		"keywords":       {keywords},
		"marketplaceIds": {s.cfg.MarketplaceID},
		"includedData":   {"summaries,images"},
		"pageSize":       {strconv.Itoa(pageSize)},
	}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *httpSDK) getListingRestrictions(asin, conditionType string) ([]ListingRestriction, error) {
	var resp struct {
		Restrictions []ListingRestriction `json:"restrictions"`
	}
	if err := s.get("/listings/2021-08-01/restrictions", url.Values{
		"asin":           {asin},
		"sellerId":       {s.cfg.SellerID},
		"marketplaceIds": {s.cfg.MarketplaceID},
		"conditionType":  {conditionType},
		"reasonLocale":   {"ja_JP"},
	}, &resp); err != nil {
		return nil, err
	}
	return resp.Restrictions, nil
}

func (s *httpSDK) createListing(sellerID, sku, productType string, attributes map[string]interface{}, offerOnly bool) (*ListingResult, error) {
	body := map[string]interface{}{"productType": productType, "attributes": attributes}
	if offerOnly {
		body["requirements"] = "LISTING_OFFER_ONLY"
	}
	var resp struct {
		Status       string         `json:"status"`
		SubmissionID string         `json:"submissionId"`
		Issues       []ListingIssue `json:"issues"`
	}
	path := fmt.Sprintf("/listings/2021-08-01/items/%s/%s", sellerID, sku)
	if err := s.put(path, url.Values{"marketplaceIds": {s.cfg.MarketplaceID}}, body, &resp); err != nil {
		return nil, err
	}
	return &ListingResult{SKU: sku, Status: resp.Status, SubmissionID: resp.SubmissionID, Issues: resp.Issues}, nil
}

func (s *httpSDK) patchListingsItem(sellerID, sku, path string, value interface{}) error {
	body := map[string]interface{}{
		"productType": "PRODUCT",
		"patches": []map[string]interface{}{{
			"op": "replace", "path": path, "value": []interface{}{value},
		}},
	}
	p := fmt.Sprintf("/listings/2021-08-01/items/%s/%s", sellerID, sku)
	return s.patch(p, url.Values{"marketplaceIds": {s.cfg.MarketplaceID}}, body, nil)
}

func (s *httpSDK) patchOfferImages(sellerID, sku string, imageURLs []string) error {
	var patches []map[string]interface{}
	if len(imageURLs) > 0 {
		patches = append(patches, map[string]interface{}{
			"op": "replace", "path": "/attributes/main_offer_image_locator",
			"value": []map[string]interface{}{{"media_location": imageURLs[0]}},
		})
	}
	for i, u := range imageURLs[1:] {
		if i >= 5 {
			break
		}
		patches = append(patches, map[string]interface{}{
			"op":    "replace",
			"path":  fmt.Sprintf("/attributes/other_offer_image_locator_%d", i+1),
			"value": []map[string]interface{}{{"media_location": u}},
		})
	}
	if len(patches) == 0 {
		return nil
	}
	body := map[string]interface{}{"productType": "PRODUCT", "patches": patches}
	path := fmt.Sprintf("/listings/2021-08-01/items/%s/%s", sellerID, sku)
	return s.patch(path, url.Values{"marketplaceIds": {s.cfg.MarketplaceID}}, body, nil)
}

func (s *httpSDK) getListing(sellerID, sku string) (*Listing, error) {
	var l Listing
	path := fmt.Sprintf("/listings/2021-08-01/items/%s/%s", sellerID, sku)
	if err := s.get(path, url.Values{"marketplaceIds": {s.cfg.MarketplaceID}}, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *httpSDK) deleteListing(sellerID, sku string) error {
	path := fmt.Sprintf("/listings/2021-08-01/items/%s/%s", sellerID, sku)
	return s.delete(path, url.Values{"marketplaceIds": {s.cfg.MarketplaceID}})
}

func (s *httpSDK) submitPriceFeed(sellerID, sku string, priceJPY int) (*FeedResult, error) {
	return s.submitJSONListingsFeed(sellerID, sku, "/attributes/purchasable_offer", map[string]interface{}{
		"marketplace_id": s.cfg.MarketplaceID, "currency": "JPY",
		"our_price": []map[string]interface{}{{"schedule": []map[string]interface{}{{"value_with_tax": priceJPY}}}},
	})
}

func (s *httpSDK) submitInventoryFeed(sellerID, sku string, quantity, leadTimeDays int) (*FeedResult, error) {
	_ = leadTimeDays // the feed payload carries quantity only, matching the original's inventory feed shape
	return s.submitJSONListingsFeed(sellerID, sku, "/attributes/fulfillment_availability", map[string]interface{}{
		"fulfillment_channel_code": "DEFAULT", "quantity": quantity,
	})
}

// submitJSONListingsFeed wraps a single-message JSON_LISTINGS_FEED —
// the feed type the real integration had to fall back to after the XML
// pricing feed started returning 403s.
func (s *httpSDK) submitJSONListingsFeed(sellerID, sku, attrPath string, value interface{}) (*FeedResult, error) {
	feed := map[string]interface{}{
		"header": map[string]interface{}{"sellerId": sellerID, "version": "2.0", "issueLocale": "ja_JP"},
		"messages": []map[string]interface{}{{
			"messageId": 1, "sku": sku, "operationType": "PATCH", "productType": "PRODUCT",
			"patches": []map[string]interface{}{{"op": "replace", "path": attrPath, "value": []interface{}{value}}},
		}},
	}
	var resp FeedResult
	if err := s.post("/feeds/2021-06-30/documents", nil, feed, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *httpSDK) getOrderItems(orderID string) ([]OrderItem, error) {
	var resp struct {
		OrderItems []OrderItem `json:"orderItems"`
	}
	path := fmt.Sprintf("/orders/v0/orders/%s/orderItems", orderID)
	if err := s.get(path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.OrderItems, nil
}

func (s *httpSDK) getNewOrders(createdAfterISO string) ([]Order, error) {
	var resp struct {
		Orders []Order `json:"orders"`
	}
	if err := s.get("/orders/v0/orders", url.Values{
		"CreatedAfter":   {createdAfterISO},
		"MarketplaceIds": {s.cfg.MarketplaceID},
		"OrderStatuses":  {OrderStatusUnshipped},
	}, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (s *httpSDK) getReferralFeePct(asin string, priceJPY int) (float64, error) {
	var resp struct {
		FeesEstimateResult struct {
			FeesEstimate struct {
				FeeDetailList []struct {
					FeeType   string `json:"feeType"`
					FeeAmount struct {
						Amount float64 `json:"amount"`
					} `json:"feeAmount"`
				} `json:"feeDetailList"`
			} `json:"feesEstimate"`
		} `json:"feesEstimateResult"`
	}
	if err := s.get("/products/fees/v0/items/"+asin+"/feesEstimate", url.Values{
		"price":    {strconv.Itoa(priceJPY)},
		"currency": {"JPY"},
		"isFba":    {"false"},
	}, &resp); err != nil {
		return 0, err
	}
	for _, fee := range resp.FeesEstimateResult.FeesEstimate.FeeDetailList {
		if fee.FeeType == "ReferralFee" {
			if priceJPY <= 0 {
				return 0, nil
			}
			return roundToOneDecimal(fee.FeeAmount.Amount / float64(priceJPY) * 100), nil
		}
	}
	return 0, fmt.Errorf("no ReferralFee entry in fee estimate response")
}

func roundToOneDecimal(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func (s *httpSDK) get(path string, query url.Values, out interface{}) error {
	return s.do(http.MethodGet, path, query, nil, out)
}

func (s *httpSDK) put(path string, query url.Values, body, out interface{}) error {
	return s.do(http.MethodPut, path, query, body, out)
}

func (s *httpSDK) patch(path string, query url.Values, body, out interface{}) error {
	return s.do(http.MethodPatch, path, query, body, out)
}

func (s *httpSDK) post(path string, query url.Values, body, out interface{}) error {
	return s.do(http.MethodPost, path, query, body, out)
}

func (s *httpSDK) delete(path string, query url.Values) error {
	return s.do(http.MethodDelete, path, query, nil, nil)
}

func (s *httpSDK) do(method, path string, query url.Values, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := mpJSON.Marshal(body)
		if err != nil {
			return &MarketplaceError{Op: method + " " + path, Message: "encoding request body: " + err.Error()}
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.cfg.BaseURL+path, reqBody)
	if err != nil {
		return &MarketplaceError{Op: method + " " + path, Message: err.Error(), Original: err}
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-amz-access-token", s.cfg.RefreshToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &MarketplaceError{Op: method + " " + path, Message: err.Error(), Original: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &MarketplaceError{Op: method + " " + path, StatusCode: resp.StatusCode, Message: "non-2xx response"}
	}
	if out == nil {
		return nil
	}
	return mpJSON.NewDecoder(resp.Body).Decode(out)
}
