package analytics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"arbitrage/pkg/utils"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// domainJP is the Amazon.co.jp marketplace domain code the provider's API
// expects for every request — this system only ever sources against the
// Japanese marketplace.
const domainJP = 5

const searchCacheMax = 50

// ProviderError is returned by every client method on failure. It always
// carries the token count observed on the last successful (or failed)
// response, so callers can decide whether to back off.
type ProviderError struct {
	Msg        string
	TokensLeft *int
}

func (e *ProviderError) Error() string {
	if e.TokensLeft != nil {
		return fmt.Sprintf("%s (tokens_left=%d)", e.Msg, *e.TokensLeft)
	}
	return e.Msg
}

// Product is the subset of the provider's product record this system
// consumes: identity, current stats and history arrays keyed by a fixed
// set of CSV type indices.
type Product struct {
	ASIN  string `json:"asin"`
	Title string `json:"title"`
	Stats struct {
		Current []int   `json:"current"`
		Avg30   []int   `json:"avg30"`
		Avg90   []int   `json:"avg90"`
		Min     [][]int `json:"minInInterval"`
		Max     [][]int `json:"maxInInterval"`
	} `json:"stats"`
}

// CSV type indices into the stats arrays above.
const (
	idxAmazon    = 0
	idxNew       = 1
	idxUsed      = 2
	idxSalesRank = 3
)

// statVal reads a scalar value out of a stats array, treating -1 (the
// provider's "no data" sentinel) and an out-of-range index as absent.
func statVal(arr []int, idx int) *int {
	if arr == nil || idx >= len(arr) {
		return nil
	}
	v := arr[idx]
	if v == -1 {
		return nil
	}
	return &v
}

// statMinMax reads a [value] or [keepaTime, value] pair out of a
// min/max stats array.
func statMinMax(arr [][]int, idx int) *int {
	if arr == nil || idx >= len(arr) {
		return nil
	}
	entry := arr[idx]
	if len(entry) == 0 {
		return nil
	}
	v := entry[len(entry)-1]
	if v == -1 {
		return nil
	}
	return &v
}

// UsedPrice, NewPrice and SalesRank extract the scalar "current" fields
// this system actually scores deals against.
func (p Product) UsedPrice() *int  { return statVal(p.Stats.Current, idxUsed) }
func (p Product) NewPrice() *int   { return statVal(p.Stats.Current, idxNew) }
func (p Product) SalesRank() *int  { return statVal(p.Stats.Current, idxSalesRank) }
func (p Product) Avg30Rank() *int  { return statVal(p.Stats.Avg30, idxSalesRank) }
func (p Product) Avg90Rank() *int  { return statVal(p.Stats.Avg90, idxSalesRank) }
func (p Product) Avg30Price() *int { return statVal(p.Stats.Avg30, idxUsed) }
func (p Product) Avg90Price() *int { return statVal(p.Stats.Avg90, idxUsed) }

type productResponse struct {
	Products   []Product `json:"products"`
	TokensLeft *int      `json:"tokensLeft"`
	Error      string    `json:"error"`
}

type finderResponse struct {
	ASINList   []string `json:"asinList"`
	TokensLeft *int     `json:"tokensLeft"`
	Error      string   `json:"error"`
}

type searchCacheKey struct {
	term      string
	statsDays int
}

// Client is the analytics provider client. One Client is shared across
// an entire scan cycle; ClearSearchCache should be called at the start
// of each cycle per §4.B.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	mu         sync.Mutex
	tokensLeft *int
	cache      map[searchCacheKey][]Product
}

// NewClient builds a client against the provider's production API base
// URL using the shared connection-pooled HTTP client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: globalClient(),
		cache:      make(map[searchCacheKey][]Product),
	}
}

// TokensLeft returns the remaining API token count observed on the most
// recent request, or nil before any request has been made.
func (c *Client) TokensLeft() *int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokensLeft
}

// ClearSearchCache drops every cached search result. Call at the start
// of each scan cycle.
func (c *Client) ClearSearchCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[searchCacheKey][]Product)
}

func (c *Client) recordTokens(tokensLeft *int) {
	c.mu.Lock()
	c.tokensLeft = tokensLeft
	c.mu.Unlock()
	if tokensLeft != nil && *tokensLeft <= 0 {
		utils.Warn("analytics provider tokens exhausted", utils.TokensLeft(*tokensLeft))
	}
}

// QueryProduct fetches a single ASIN's product data. Returns an error
// wrapping ProviderError when the provider has no record for this ASIN.
func (c *Client) QueryProduct(ctx context.Context, asin string, statsDays int, history bool) (*Product, error) {
	products, err := c.QueryProducts(ctx, []string{asin}, statsDays, history)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, &ProviderError{Msg: fmt.Sprintf("no product data returned for ASIN %s", asin), TokensLeft: c.TokensLeft()}
	}
	return &products[0], nil
}

// QueryProducts fetches product data for up to 100 ASINs in one request.
func (c *Client) QueryProducts(ctx context.Context, asins []string, statsDays int, history bool) ([]Product, error) {
	historyFlag := "0"
	if history {
		historyFlag = "1"
	}
	q := map[string]string{
		"asin":    strings.Join(asins, ","),
		"stats":   strconv.Itoa(statsDays),
		"history": historyFlag,
	}
	var resp productResponse
	if err := c.get(ctx, "/product", q, &resp); err != nil {
		return nil, err
	}
	c.recordTokens(resp.TokensLeft)
	if resp.Products == nil {
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &ProviderError{Msg: "provider error: " + msg, TokensLeft: resp.TokensLeft}
	}
	return resp.Products, nil
}

// SearchProducts searches the provider's catalog by keyword, returning
// up to 40 results. Results are cached in-memory by (term, statsDays)
// for the lifetime of the scan cycle — call ClearSearchCache to reset.
func (c *Client) SearchProducts(ctx context.Context, term string, statsDays int) ([]Product, error) {
	key := searchCacheKey{term: term, statsDays: statsDays}

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	q := map[string]string{
		"type":  "product",
		"term":  term,
		"stats": strconv.Itoa(statsDays),
	}
	var resp productResponse
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}
	c.recordTokens(resp.TokensLeft)
	if resp.Products == nil {
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &ProviderError{Msg: "search error: " + msg, TokensLeft: resp.TokensLeft}
	}

	c.mu.Lock()
	if len(c.cache) >= searchCacheMax {
		c.cache = make(map[searchCacheKey][]Product)
	}
	c.cache[key] = resp.Products
	c.mu.Unlock()

	return resp.Products, nil
}

// ProductFinder runs a filter-criteria search against the provider's
// query endpoint, then fetches full product details for the top 50
// matching ASINs.
func (c *Client) ProductFinder(ctx context.Context, selectionJSON string, statsDays int) ([]Product, error) {
	q := map[string]string{"selection": selectionJSON}
	var resp finderResponse
	if err := c.get(ctx, "/query", q, &resp); err != nil {
		return nil, err
	}
	c.recordTokens(resp.TokensLeft)
	if len(resp.ASINList) == 0 {
		return nil, nil
	}
	limit := 50
	if len(resp.ASINList) < limit {
		limit = len(resp.ASINList)
	}
	return c.QueryProducts(ctx, resp.ASINList[:limit], statsDays, false)
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	q.Set("domain", strconv.Itoa(domainJP))
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Msg: "http error: " + err.Error(), TokensLeft: c.TokensLeft()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Msg: fmt.Sprintf("provider returned status %d", resp.StatusCode), TokensLeft: c.TokensLeft()}
	}
	return jsonAPI.NewDecoder(resp.Body).Decode(out)
}
