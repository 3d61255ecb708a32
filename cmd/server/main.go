package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stockboard/internal/config"
	"stockboard/internal/httpx"
	"stockboard/internal/resolver"
	"stockboard/internal/source"
	"stockboard/internal/source/cache"
	"stockboard/internal/source/fallback"
	"stockboard/internal/source/nse"
	"stockboard/internal/source/ratelimit"
	"stockboard/internal/source/yahoo"
	"stockboard/internal/source/yahooadapter"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	port := cfg.Server.Port
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

	rsv := buildResolver(cfg)

	h := &quoteHandler{resolver: rsv, timeout: timeout}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/quote", h.getQuote)
		r.Get("/quote/financials.csv", h.exportFinancials)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildResolver composes the per-market source stack from configuration.
// Every source is wrapped in a TTL memoizer; the NSE source additionally gets
// rate limiting because the exchange throttles burst traffic aggressively.
func buildResolver(cfg config.Config) *resolver.Resolver {
	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	yc := yahoo.NewClient(yahoo.WithBaseURL(cfg.Yahoo.BaseURL), yahoo.WithHTTPClient(httpClient.HTTP))

	us := wrapCache(yahooadapter.New(yahooadapter.Config{
		Name:         "Yahoo",
		HistoryRange: cfg.Yahoo.HistoryRange,
	}, yc), cfg.Yahoo.CacheTTLSeconds, cfg.Yahoo.CacheMaxItems)

	bse := wrapCache(yahooadapter.New(yahooadapter.Config{
		Name:         "Yahoo:BSE",
		Suffix:       cfg.Yahoo.BSESuffix,
		HistoryRange: cfg.Yahoo.HistoryRange,
	}, yc), cfg.Yahoo.CacheTTLSeconds, cfg.Yahoo.CacheMaxItems)

	var nseSrc source.Source = nse.New(nse.Config{
		Name:               "NSE",
		BaseURL:            cfg.NSE.BaseURL,
		ArchiveURL:         cfg.NSE.ArchiveURL,
		SymbolsCacheTTLSec: cfg.NSE.SymbolsCacheTTLSec,
	}, httpClient)
	// Prefer token bucket with burst if RPM is set, otherwise use min-interval
	if cfg.NSE.MaxRequestsPerMinute > 0 {
		rate := float64(cfg.NSE.MaxRequestsPerMinute) / 60.0
		burst := cfg.NSE.Burst
		if burst <= 0 {
			burst = 1
		}
		nseSrc = &ratelimit.TokenBucketSource{S: nseSrc, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if cfg.NSE.MinRequestIntervalSec > 0 {
		interval := time.Duration(cfg.NSE.MinRequestIntervalSec) * time.Second
		nseSrc = &ratelimit.MinInterval{S: nseSrc, Interval: interval}
	}
	if cfg.NSE.UseFallback {
		nseFallback := yahooadapter.New(yahooadapter.Config{
			Name:         "Yahoo:NSE",
			Suffix:       cfg.Yahoo.NSESuffix,
			HistoryRange: cfg.Yahoo.HistoryRange,
		}, yc)
		nseSrc = fallback.New(nseSrc, nseFallback)
	}
	nseSrc = wrapCache(nseSrc, cfg.NSE.CacheTTLSeconds, cfg.NSE.CacheMaxItems)

	return resolver.New(us, nseSrc, bse)
}

func wrapCache(s source.Source, ttlSec, maxItems int) source.Source {
	if ttlSec <= 0 {
		return s
	}
	return &cache.Source{S: s, TTL: time.Duration(ttlSec) * time.Second, MaxItems: maxItems}
}

// requestLogger logs method, path, status and duration for each request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		sanitize := strings.NewReplacer("\n", "", "\r", "").Replace
		log.Printf("%s %s %d %s", sanitize(r.Method), sanitize(r.URL.Path), ww.Status(), time.Since(start))
	})
}
