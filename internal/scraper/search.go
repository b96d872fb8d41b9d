package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SearchResultItem is one listing row on a Yahoo Auctions search results
// page. Unlike AuctionData it's assembled from DOM attributes/text
// rather than an embedded JSON blob, so several fields are best-effort.
type SearchResultItem struct {
	AuctionID    string
	Title        string
	URL          string
	ImageURL     string
	CurrentPrice int
	BuyNowPrice  int
	StartPrice   int
	BidCount     int
	EndTime      *time.Time
	SellerID     string
	CategoryID   string
	ShippingCost *int
}

var priceDigitsRe = regexp.MustCompile(`[\d,]+`)

// SearchResultsParser parses a Yahoo! Auctions search results page.
type SearchResultsParser struct{}

// Parse returns every listing found in the results page. A <li.Product>
// row missing its auction id is skipped rather than failing the whole
// page over one malformed row.
func (p *SearchResultsParser) Parse(html string) ([]SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var results []SearchResultItem
	doc.Find("li.Product").Each(func(_ int, li *goquery.Selection) {
		item, ok := parseSearchResultItem(li)
		if !ok {
			return
		}
		results = append(results, item)
	})
	return results, nil
}

// parseSearchResultItem collects every data-auction-* attribute spread
// across a result row's children, then layers on the bid count, buy-now
// price and shipping cost that only live in rendered DOM text.
func parseSearchResultItem(li *goquery.Selection) (SearchResultItem, bool) {
	attrs := collectAuctionAttrs(li)

	auctionID := attrs["id"]
	if auctionID == "" {
		return SearchResultItem{}, false
	}

	item := SearchResultItem{
		AuctionID:    auctionID,
		Title:        attrs["title"],
		URL:          auctionURL(auctionID),
		ImageURL:     attrs["img"],
		CurrentPrice: atoiOr(attrs["price"], 0),
		StartPrice:   atoiOr(attrs["startprice"], 0),
		SellerID:     attrs["auc-seller-id"],
		CategoryID:   attrs["category"],
	}

	if raw := attrs["endtime"]; raw != "" {
		if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
			t := time.Unix(sec, 0).In(jstLocation)
			item.EndTime = &t
		}
	}

	if bidText := strings.TrimSpace(li.Find(".Product__bid").First().Text()); bidText != "" {
		item.BidCount = atoiOr(bidText, 0)
	}

	item.BuyNowPrice = atoiOr(attrs["buynowprice"], 0)
	if item.BuyNowPrice <= 0 {
		item.BuyNowPrice = parseBuyNowPrice(li)
	}

	item.ShippingCost = parseShippingCost(li)

	return item, true
}

func collectAuctionAttrs(li *goquery.Selection) map[string]string {
	attrs := make(map[string]string)
	li.Find("[data-auction-id]").Each(func(_ int, el *goquery.Selection) {
		node := el.Get(0)
		for _, a := range node.Attr {
			if !strings.HasPrefix(a.Key, "data-auction-") || a.Val == "" {
				continue
			}
			name := strings.TrimPrefix(a.Key, "data-auction-")
			if existing, ok := attrs[name]; !ok || existing == "" {
				attrs[name] = a.Val
			}
		}
	})
	return attrs
}

// parseBuyNowPrice finds a "即決" (buy-it-now) price block among a
// listing's .Product__price rows.
func parseBuyNowPrice(li *goquery.Selection) int {
	result := 0
	li.Find(".Product__price").EachWithBreak(func(_ int, priceDiv *goquery.Selection) bool {
		label := strings.TrimSpace(priceDiv.Find(".Product__label").First().Text())
		if !strings.Contains(label, "即決") {
			return true
		}
		text := strings.ReplaceAll(strings.TrimSpace(priceDiv.Find(".Product__priceValue").First().Text()), ",", "")
		if m := priceDigitsRe.FindString(text); m != "" {
			result = atoiOr(strings.ReplaceAll(m, ",", ""), 0)
			return false
		}
		return true
	})
	return result
}

var shippingSelectors = []string{
	".Product__shipping", ".Product__postage",
	"[class*='shipping']", "[class*='postage']",
}

// parseShippingCost extracts the shipping fee shown on a listing row.
// "送料無料" means free (0), a yen amount is parsed out, and nil means
// the page gave no indication either way.
func parseShippingCost(li *goquery.Selection) *int {
	for _, sel := range shippingSelectors {
		el := li.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(el.Text())
		if strings.Contains(text, "無料") || strings.Contains(strings.ToLower(text), "free") {
			zero := 0
			return &zero
		}
		if m := priceDigitsRe.FindString(strings.ReplaceAll(text, ",", "")); m != "" {
			v := atoiOr(m, 0)
			return &v
		}
		return nil
	}

	if strings.Contains(li.Text(), "送料無料") {
		zero := 0
		return &zero
	}
	return nil
}

func atoiOr(s string, fallback int) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
