// README: Smoke runner against a deployed API; executes HTTP/DB/Redis checks and prints results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	results := NewRunner(cfg).RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			pass++
		case StatusFail:
			fail++
		case StatusSkip:
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL     string        `env:"ROAMLY_SMOKE_BASE_URL" envDefault:"http://localhost:8080"`
	DSN         string        `env:"ROAMLY_DB_DSN"`
	RedisAddr   string        `env:"ROAMLY_REDIS_ADDR"`
	BearerToken string        `env:"ROAMLY_SMOKE_TOKEN"`
	Live        bool          `env:"ROAMLY_SMOKE_LIVE" envDefault:"false"`
	Strict      bool          `env:"ROAMLY_SMOKE_STRICT" envDefault:"false"`
	Timeout     time.Duration `env:"ROAMLY_SMOKE_TIMEOUT" envDefault:"3m"`
	Concurrency int           `env:"ROAMLY_SMOKE_CONCURRENCY" envDefault:"20"`
	Duration    time.Duration `env:"ROAMLY_SMOKE_DURATION" envDefault:"5s"`
}

// loadConfig reads env defaults first; flags override them.
func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "API base URL")
	flag.StringVar(&cfg.DSN, "dsn", cfg.DSN, "Postgres DSN (optional)")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address (optional)")
	flag.StringVar(&cfg.BearerToken, "token", cfg.BearerToken, "Firebase ID token when the API enforces auth")
	flag.BoolVar(&cfg.Live, "live", cfg.Live, "Run checks that call Gemini (consumes quota)")
	flag.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Fail when any check is skipped")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Concurrency for perf checks")
	flag.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Duration for perf checks")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}
