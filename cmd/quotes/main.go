package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/quotegather/yahoo-data/internal/yahoo"
)

func main() {
	symbol := flag.String("symbol", "AAPL", "symbol to exercise the endpoints with")
	query := flag.String("query", "apple", "search query")
	flag.Parse()

	client, err := yahoo.NewClient(yahoo.WithTimeout(30 * time.Second))
	if err != nil {
		log.Fatalf("NewClient failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	// Test 1: Latest quote
	fmt.Println("=== Testing GetLatestQuotes ===")
	latest, err := client.GetLatestQuotes(ctx, *symbol, "1d")
	if err != nil {
		log.Fatalf("GetLatestQuotes failed: %v", err)
	}
	last, err := latest.LastQuote()
	if err != nil {
		log.Fatalf("LastQuote failed: %v", err)
	}
	fmt.Printf("Symbol: %s\n", *symbol)
	fmt.Printf("Close: %.4f (at %s)\n", last.Close, time.Unix(last.Timestamp, 0).Format(time.RFC3339))
	fmt.Printf("OHLC: %.4f / %.4f / %.4f / %.4f\n", last.Open, last.High, last.Low, last.Close)
	fmt.Printf("Volume: %d\n", last.Volume)

	meta, err := latest.Metadata()
	if err != nil {
		log.Fatalf("Metadata failed: %v", err)
	}
	fmt.Printf("Exchange: %s (%s)\n", meta.ExchangeName, meta.ExchangeTimezoneName)
	fmt.Printf("Currency: %s\n", strVal(meta.Currency))
	fmt.Printf("InstrumentType: %s\n", meta.InstrumentType)

	// Test 2: Historical range
	fmt.Println("\n=== Testing GetQuoteRange ===")
	hist, err := client.GetQuoteRange(ctx, *symbol, "1d", "1mo")
	if err != nil {
		log.Fatalf("GetQuoteRange failed: %v", err)
	}
	bars, err := hist.Quotes()
	if err != nil {
		log.Fatalf("Quotes failed: %v", err)
	}
	fmt.Printf("Fetched %d daily bars\n", len(bars))
	for i, b := range bars {
		if i >= 3 {
			fmt.Printf("  ... and %d more\n", len(bars)-3)
			break
		}
		fmt.Printf("  %s close=%.4f adj=%.4f vol=%d\n",
			time.Unix(b.Timestamp, 0).Format("2006-01-02"), b.Close, b.AdjClose, b.Volume)
	}

	// Test 3: Corporate actions over a longer window
	fmt.Println("\n=== Testing Dividends/Splits ===")
	year, err := client.GetQuoteRange(ctx, *symbol, "1d", "1y")
	if err != nil {
		log.Fatalf("GetQuoteRange(1y) failed: %v", err)
	}
	divs := year.Dividends()
	fmt.Printf("Dividends: %d\n", len(divs))
	for _, d := range divs {
		fmt.Printf("  %s amount=%.4f\n", time.Unix(d.Date, 0).Format("2006-01-02"), d.Amount)
	}
	splits := year.Splits()
	fmt.Printf("Splits: %d\n", len(splits))
	for _, s := range splits {
		fmt.Printf("  %s ratio=%s\n", time.Unix(s.Date, 0).Format("2006-01-02"), s.SplitRatio)
	}

	// Test 4: Search
	fmt.Printf("\n=== Testing SearchTicker (%q) ===\n", *query)
	result, err := client.SearchTicker(ctx, *query)
	if err != nil {
		log.Fatalf("SearchTicker failed: %v", err)
	}
	fmt.Printf("Matched %d instruments, %d news items\n", result.Count, len(result.News))
	for i, q := range result.Quotes {
		if i >= 5 {
			break
		}
		fmt.Printf("  %d. %s - %s (%s, %s)\n", i+1, q.Symbol, q.ShortName, q.Exchange, q.QuoteType)
	}

	// Test 5: Summary modules (needs cookie+crumb)
	fmt.Printf("\n=== Testing GetTickerInfo (%s) ===\n", *symbol)
	info, err := client.GetTickerInfo(ctx, *symbol)
	if err != nil {
		log.Fatalf("GetTickerInfo failed: %v", err)
	}
	if info.QuoteType != nil {
		fmt.Printf("Name: %s\n", strVal(info.QuoteType.ShortName))
		fmt.Printf("Exchange: %s\n", strVal(info.QuoteType.Exchange))
	}
	if info.SummaryDetail != nil {
		fmt.Printf("MarketCap: %d\n", uintVal(info.SummaryDetail.MarketCap))
		if info.SummaryDetail.TrailingPE.Valid {
			fmt.Printf("TrailingPE: %.2f\n", info.SummaryDetail.TrailingPE.Float64)
		}
	}
	if info.FinancialData != nil {
		fmt.Printf("CurrentPrice: %.4f\n", floatVal(info.FinancialData.CurrentPrice))
		fmt.Printf("TargetMeanPrice: %.4f\n", floatVal(info.FinancialData.TargetMeanPrice))
		fmt.Printf("Recommendation: %s\n", strVal(info.FinancialData.RecommendationKey))
	}
	if info.AssetProfile != nil {
		fmt.Printf("Sector: %s / %s\n", strVal(info.AssetProfile.Sector), strVal(info.AssetProfile.Industry))
	}

	// Test 6: Earnings calendar
	fmt.Printf("\n=== Testing GetEarningsOnly (%s) ===\n", *symbol)
	events, err := client.GetEarningsOnly(ctx, *symbol, 8)
	if err != nil {
		log.Fatalf("GetEarningsOnly failed: %v", err)
	}
	fmt.Printf("Fetched %d earnings events\n", len(events))
	for i, ev := range events {
		if i >= 4 {
			break
		}
		fmt.Printf("  %s estimate=%s reported=%s surprise=%s%%\n",
			ev.Date.Format("2006-01-02"),
			floatStr(ev.EPSEstimate), floatStr(ev.ReportedEPS), floatStr(ev.SurprisePercent))
	}

	// Test 7: Option chain
	fmt.Printf("\n=== Testing GetOptionChain (%s) ===\n", *symbol)
	chain, err := client.GetOptionChain(ctx, *symbol)
	if err != nil {
		log.Fatalf("GetOptionChain failed: %v", err)
	}
	fmt.Printf("Underlying: %s\n", chain.UnderlyingSymbol)
	fmt.Printf("Expirations: %d, Strikes: %d\n", len(chain.ExpirationDates), len(chain.Strikes))
	if len(chain.Options) > 0 {
		opt := chain.Options[0]
		fmt.Printf("Nearest expiration %s: %d calls, %d puts\n",
			time.Unix(opt.ExpirationDate, 0).Format("2006-01-02"), len(opt.Calls), len(opt.Puts))
		for i, c := range opt.Calls {
			if i >= 3 {
				break
			}
			fmt.Printf("  %s strike=%.2f last=%.2f bid=%.2f ask=%.2f oi=%d\n",
				c.ContractSymbol, c.Strike, c.LastPrice.Float64, c.Bid.Float64, c.Ask.Float64,
				uintVal(c.OpenInterest))
		}
	}

	fmt.Println("\n=== All tests passed ===")
}

func strVal(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func floatVal(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func floatStr(f *float64) string {
	if f == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *f)
}

func uintVal(u *uint64) uint64 {
	if u == nil {
		return 0
	}
	return *u
}
