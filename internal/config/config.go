package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Server struct {
	Port              string   `json:"port"`
	RequestTimeoutSec int      `json:"request_timeout_sec"`
	AllowedOrigins    []string `json:"allowed_origins"`
}

// Yahoo configures the general-market provider. The same client serves the US
// market directly and the Indian markets through listing suffixes.
type Yahoo struct {
	BaseURL         string `json:"base_url"`
	NSESuffix       string `json:"nse_suffix"`
	BSESuffix       string `json:"bse_suffix"`
	HistoryRange    string `json:"history_range"`
	CacheTTLSeconds int    `json:"cache_ttl_sec"`
	CacheMaxItems   int    `json:"cache_max_items"`
}

// NSE configures the regional-exchange quote provider.
type NSE struct {
	BaseURL    string `json:"base_url"`
	ArchiveURL string `json:"archive_url"`
	// UseFallback routes NSE requests through the yahoo fallback chain when
	// the live quote source fails.
	UseFallback           bool `json:"use_fallback"`
	SymbolsCacheTTLSec    int  `json:"symbols_cache_ttl_sec"`
	MaxRequestsPerMinute  int  `json:"max_requests_per_minute"`
	MinRequestIntervalSec int  `json:"min_request_interval_sec"`
	Burst                 int  `json:"burst"`
	CacheTTLSeconds       int  `json:"cache_ttl_sec"`
	CacheMaxItems         int  `json:"cache_max_items"`
}

type Config struct {
	Server Server `json:"server"`
	Yahoo  Yahoo  `json:"yahoo"`
	NSE    NSE    `json:"nse"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:              "8080",
			RequestTimeoutSec: 15,
			AllowedOrigins:    []string{"http://localhost:3000", "http://localhost"},
		},
		Yahoo: Yahoo{
			BaseURL:         "https://query1.finance.yahoo.com",
			NSESuffix:       ".NS",
			BSESuffix:       ".BO",
			HistoryRange:    "1y",
			CacheTTLSeconds: 300,
			CacheMaxItems:   1000,
		},
		NSE: NSE{
			BaseURL:              "https://www.nseindia.com",
			ArchiveURL:           "https://archives.nseindia.com/content/equities/EQUITY_L.csv",
			UseFallback:          true,
			SymbolsCacheTTLSec:   86400,
			MaxRequestsPerMinute: 30,
			Burst:                5,
			CacheTTLSeconds:      300,
			CacheMaxItems:        1000,
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. A local .env file and environment variables
// override select fields.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Yahoo.BaseURL = v
	}
	if v := os.Getenv("YAHOO_HISTORY_RANGE"); v != "" {
		cfg.Yahoo.HistoryRange = v
	}
	if v := os.Getenv("YAHOO_CACHE_TTL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Yahoo.CacheTTLSeconds = x
		}
	}
	if v := os.Getenv("YAHOO_CACHE_MAX_ITEMS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Yahoo.CacheMaxItems = x
		}
	}
	if v := os.Getenv("NSE_BASE_URL"); v != "" {
		cfg.NSE.BaseURL = v
	}
	if v := os.Getenv("NSE_ARCHIVE_URL"); v != "" {
		cfg.NSE.ArchiveURL = v
	}
	if v := os.Getenv("NSE_USE_FALLBACK"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.NSE.UseFallback = true
		case "0", "false", "no", "n":
			cfg.NSE.UseFallback = false
		}
	}
	if v := os.Getenv("NSE_SYMBOLS_CACHE_TTL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.NSE.SymbolsCacheTTLSec = x
		}
	}
	if v := os.Getenv("NSE_MAX_RPM"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.NSE.MaxRequestsPerMinute = x
		}
	}
	if v := os.Getenv("NSE_MIN_INTERVAL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.NSE.MinRequestIntervalSec = x
		}
	}
	if v := os.Getenv("NSE_BURST"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.NSE.Burst = x
		}
	}
	if v := os.Getenv("NSE_CACHE_TTL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.NSE.CacheTTLSeconds = x
		}
	}
	if v := os.Getenv("NSE_CACHE_MAX_ITEMS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.NSE.CacheMaxItems = x
		}
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
