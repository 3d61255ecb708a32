package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"stockboard/internal/config"
	"stockboard/internal/httpx"
	"stockboard/internal/metrics"
	"stockboard/internal/quote"
	"stockboard/internal/resolver"
	"stockboard/internal/source"
	"stockboard/internal/source/fallback"
	"stockboard/internal/source/nse"
	"stockboard/internal/source/ratelimit"
	"stockboard/internal/source/yahoo"
	"stockboard/internal/source/yahooadapter"
)

func main() {
	var symbol string
	var marketStr string
	var timeout int
	var configPath string
	var asJSON bool

	flag.StringVar(&symbol, "symbol", getenv("SYMBOL", "RELIANCE"), "stock symbol (e.g. RELIANCE for NSE, TATAMOTORS for BSE, AAPL for US)")
	flag.StringVar(&marketStr, "market", getenv("MARKET", "NSE"), "market: US, NSE or BSE")
	flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.BoolVar(&asJSON, "json", false, "print the full snapshot as JSON instead of tables")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout != 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	market, err := quote.ParseMarket(marketStr)
	if err != nil {
		log.Fatalf("market: %v", err)
	}

	rsv := buildResolver(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	snap, err := rsv.Resolve(ctx, symbol, market)
	if err != nil {
		log.Fatalf("fetch %s (%s): %v", symbol, market, err)
	}

	if asJSON {
		b, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(b))
		return
	}

	q := snap.Quote
	fmt.Printf("%s (%s, %s)\n", q.Name, q.Symbol, q.Market)
	if q.CurrentPrice != nil {
		change := "N/A"
		if q.ChangePercent != nil {
			change = q.ChangePercent.StringFixed(2) + "%"
		}
		fmt.Printf("price: %s%s (%s)\n", q.Market.CurrencySymbol(), q.CurrentPrice.StringFixed(2), change)
	}
	fmt.Printf("history: %d candles\n\n", len(snap.History))

	fmt.Println("Key Market Metrics")
	for _, row := range metrics.Headline(q) {
		fmt.Printf("  %-18s %s\n", row.Label, row.Value)
	}
	fmt.Println("Financial Information")
	for _, row := range metrics.Financials(q) {
		fmt.Printf("  %-18s %s\n", row.Label, row.Value)
	}
}

// buildResolver mirrors the server's composition minus the per-symbol caches;
// a one-shot fetch has nothing to memoize.
func buildResolver(cfg config.Config) *resolver.Resolver {
	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	yc := yahoo.NewClient(yahoo.WithBaseURL(cfg.Yahoo.BaseURL), yahoo.WithHTTPClient(httpClient.HTTP))

	us := yahooadapter.New(yahooadapter.Config{
		Name:         "Yahoo",
		HistoryRange: cfg.Yahoo.HistoryRange,
	}, yc)
	bse := yahooadapter.New(yahooadapter.Config{
		Name:         "Yahoo:BSE",
		Suffix:       cfg.Yahoo.BSESuffix,
		HistoryRange: cfg.Yahoo.HistoryRange,
	}, yc)

	var nseSrc source.Source = nse.New(nse.Config{
		Name:               "NSE",
		BaseURL:            cfg.NSE.BaseURL,
		ArchiveURL:         cfg.NSE.ArchiveURL,
		SymbolsCacheTTLSec: cfg.NSE.SymbolsCacheTTLSec,
	}, httpClient)
	if cfg.NSE.MinRequestIntervalSec > 0 {
		nseSrc = &ratelimit.MinInterval{S: nseSrc, Interval: time.Duration(cfg.NSE.MinRequestIntervalSec) * time.Second}
	}
	if cfg.NSE.UseFallback {
		nseSrc = fallback.New(nseSrc, yahooadapter.New(yahooadapter.Config{
			Name:         "Yahoo:NSE",
			Suffix:       cfg.Yahoo.NSESuffix,
			HistoryRange: cfg.Yahoo.HistoryRange,
		}, yc))
	}

	return resolver.New(us, nseSrc, bse)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
