package rejection

import (
	"testing"

	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

func TestSuggestReasons_BrandConflict(t *testing.T) {
	alert := &models.DealAlert{
		YahooTitle:  "任天堂 Nintendo Switch 本体",
		AmazonTitle: "SONY PlayStation 5 本体",
		YahooPrice:  8000, YahooShipping: 500, SellPrice: 30000,
	}
	out, err := SuggestReasons(alert, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 || out[0].Reason != models.RejectionReasonWrongProduct {
		t.Fatalf("want wrong_product to rank first, got %+v", out)
	}
}

func TestSuggestReasons_AccessoryToken(t *testing.T) {
	alert := &models.DealAlert{
		YahooTitle:  "ソニー ヘッドホン ケースのみ",
		AmazonTitle: "ソニー ヘッドホン WH-1000XM4",
		YahooPrice:  1000, YahooShipping: 300, SellPrice: 25000,
	}
	out, err := SuggestReasons(alert, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, s := range out {
		if s.Reason == models.RejectionReasonAccessory {
			found = true
		}
	}
	if !found {
		t.Fatalf("want accessory suggestion from both token and low price ratio, got %+v", out)
	}
}

func TestSuggestReasons_PriorProblemPairRanksFirst(t *testing.T) {
	repo := newFakeRejectionPatternRepo()
	rejSvc := service.NewRejectionService(repo)
	alert := &models.DealAlert{
		YahooAuctionID: "x123", AmazonASIN: "B000TEST1",
		YahooTitle: "適当なタイトル", AmazonTitle: "別の適当なタイトル",
		YahooPrice: 5000, YahooShipping: 500, SellPrice: 10000,
	}
	if _, err := rejSvc.RecordRejection(models.PatternTypeProblemPair, alert.AmazonASIN, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := SuggestReasons(alert, rejSvc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 || out[0].Reason != models.RejectionReasonNeverShow || out[0].Confidence != confidencePriorProblemPair {
		t.Fatalf("want never_show at top with 0.98 confidence, got %+v", out)
	}
}

func TestSuggestReasons_NoSignalsYieldsNoneOrNeutral(t *testing.T) {
	alert := &models.DealAlert{
		YahooTitle:  "ソニー ヘッドホン WH-1000XM4 美品",
		AmazonTitle: "ソニー ヘッドホン WH-1000XM4",
		YahooPrice:  15000, YahooShipping: 500, SellPrice: 25000,
	}
	out, err := SuggestReasons(alert, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range out {
		if s.Reason == models.RejectionReasonBadPrice || s.Reason == models.RejectionReasonAccessory {
			t.Fatalf("price ratio in neutral band should not trigger a suggestion, got %+v", out)
		}
	}
}

func TestPriceRatio_ZeroSellPriceIsZero(t *testing.T) {
	alert := &models.DealAlert{YahooPrice: 1000, SellPrice: 0}
	if got := priceRatio(alert); got != 0 {
		t.Errorf("priceRatio with zero sell price: want 0, got %v", got)
	}
}

func TestDetectedAccessoryWord(t *testing.T) {
	if w := detectedAccessoryWord("ジャンク品 ジャンク本体のみ"); w == "" {
		t.Errorf("want a detected accessory word")
	}
	if w := detectedAccessoryWord("普通の商品タイトル"); w != "" {
		t.Errorf("want no accessory word, got %q", w)
	}
}
