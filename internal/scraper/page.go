package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"arbitrage/pkg/utils"
)

var pageJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// jstLocation is Japan Standard Time, UTC+9, used for every auction
// start/end timestamp since Yahoo Auctions only ever reports JST.
var jstLocation = time.FixedZone("JST", 9*60*60)

// AuctionData is what an individual auction item page yields.
type AuctionData struct {
	AuctionID    string
	Title        string
	URL          string
	ImageURL     string
	CategoryID   string
	SellerID     string
	CurrentPrice int
	StartPrice   int
	BuyNowPrice  int
	WinPrice     int
	StartTime    *time.Time
	EndTime      *time.Time
	BidCount     int
	IsClosed     bool
	HasWinner    bool
}

var (
	pageDataRe    = regexp.MustCompile(`var\s+pageData\s*=\s*(\{.*?\})\s*;`)
	ogImageRe     = regexp.MustCompile(`<meta\s+property="og:image"\s+content="([^"]+)"`)
	descriptionRe = regexp.MustCompile(`<meta\s+(?:property="og:description"|name="description")\s+content="([^"]+)"`)
	sellerRe      = regexp.MustCompile(`/seller/([^"'&?\s]+)`)
	imgURLRe      = regexp.MustCompile(`https://auctions\.c\.yimg\.jp/images\.auctions\.yahoo\.co\.jp/image/[^\s"'<>]+`)
)

// pageDataItems mirrors the "items" object embedded in Yahoo Auctions'
// inline `var pageData = {...}` script block.
type pageDataItems struct {
	ProductID         string              `json:"productID"`
	ProductName       string              `json:"productName"`
	ProductCategoryID string              `json:"productCategoryID"`
	Price             jsoniter.RawMessage `json:"price"`
	WinPrice          jsoniter.RawMessage `json:"winPrice"`
	StartTime         string              `json:"starttime"`
	EndTime           string              `json:"endtime"`
	Bids              jsoniter.RawMessage `json:"bids"`
	IsClosed          string              `json:"isClosed"`
	HasWinner         string              `json:"hasWinner"`
	ImageURLs         jsoniter.RawMessage `json:"imageUrls"`
	Images            jsoniter.RawMessage `json:"images"`
	Img               jsoniter.RawMessage `json:"img"`
}

type pageData struct {
	Items pageDataItems `json:"items"`
}

// AuctionPageParser parses an individual Yahoo! Auctions product page.
type AuctionPageParser struct{}

// Parse extracts the embedded pageData JSON blob and the handful of meta
// tags that aren't duplicated there (og:image, seller id).
func (p *AuctionPageParser) Parse(html string) (*AuctionData, error) {
	m := pageDataRe.FindStringSubmatch(html)
	if m == nil {
		utils.Warn("pageData not found in HTML")
		return nil, nil
	}

	var pd pageData
	if err := pageJSON.UnmarshalFromString(m[1], &pd); err != nil {
		utils.Warn("failed to parse pageData JSON", utils.Err(err))
		return nil, nil
	}

	if pd.Items.ProductID == "" {
		return nil, nil
	}

	imageURL := ""
	if img := ogImageRe.FindStringSubmatch(html); img != nil {
		imageURL = img[1]
	}

	sellerID := ""
	if s := sellerRe.FindStringSubmatch(html); s != nil {
		sellerID = s[1]
	}

	price := numberToInt(pd.Items.Price)

	return &AuctionData{
		AuctionID:    pd.Items.ProductID,
		Title:        pd.Items.ProductName,
		URL:          auctionURL(pd.Items.ProductID),
		ImageURL:     imageURL,
		CategoryID:   pd.Items.ProductCategoryID,
		SellerID:     sellerID,
		CurrentPrice: price,
		StartPrice:   price, // pageData doesn't expose start price separately
		BuyNowPrice:  0,     // not present in pageData
		WinPrice:     numberToInt(pd.Items.WinPrice),
		StartTime:    parseJSTDateTime(pd.Items.StartTime),
		EndTime:      parseJSTDateTime(pd.Items.EndTime),
		BidCount:     numberToInt(pd.Items.Bids),
		IsClosed:     pd.Items.IsClosed == "1",
		HasWinner:    pd.Items.HasWinner == "1",
	}, nil
}

// ExtractAllImages returns every product image URL, trying (in order)
// the pageData JSON arrays, the og:image meta tag, then a raw CDN-URL
// regex scan of the page body.
func (p *AuctionPageParser) ExtractAllImages(html string) []string {
	var images []string

	if m := pageDataRe.FindStringSubmatch(html); m != nil {
		var pd pageData
		if err := pageJSON.UnmarshalFromString(m[1], &pd); err == nil {
			for _, raw := range []jsoniter.RawMessage{pd.Items.ImageURLs, pd.Items.Images, pd.Items.Img} {
				if urls := decodeImageList(raw); len(urls) > 0 {
					images = urls
					break
				}
			}
		}
	}

	if len(images) == 0 {
		if og := ogImageRe.FindStringSubmatch(html); og != nil {
			images = append(images, og[1])
		}
	}

	if len(images) == 0 {
		images = imgURLRe.FindAllString(html, -1)
	}

	return dedupeStrings(images)
}

// ExtractDescription returns the seller's listing description, pulled
// from the og:description/description meta tag.
func (p *AuctionPageParser) ExtractDescription(html string) string {
	if m := descriptionRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

func decodeImageList(raw jsoniter.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var asSlice []jsoniter.RawMessage
	if err := pageJSON.Unmarshal(raw, &asSlice); err == nil {
		var out []string
		for _, item := range asSlice {
			var s string
			if pageJSON.Unmarshal(item, &s) == nil && s != "" {
				out = append(out, s)
				continue
			}
			var obj struct {
				URL string `json:"url"`
			}
			if pageJSON.Unmarshal(item, &obj) == nil && obj.URL != "" {
				out = append(out, obj.URL)
			}
		}
		return out
	}
	var single string
	if pageJSON.Unmarshal(raw, &single) == nil && single != "" {
		return []string{single}
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// numberToInt reads an int out of a raw JSON token that may be either a
// bare number or a quoted numeric string. pageData has been observed to
// emit both for the same field across different auction categories.
func numberToInt(raw jsoniter.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func auctionURL(auctionID string) string {
	return "https://auctions.yahoo.co.jp/jp/auction/" + auctionID
}

// parseJSTDateTime parses the "YYYY-MM-DD HH:MM:SS" timestamps pageData
// embeds, all of which are already in JST.
func parseJSTDateTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, jstLocation)
	if err != nil {
		return nil
	}
	return &t
}
