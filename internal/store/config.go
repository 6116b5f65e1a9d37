package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	PollSeconds int    `yaml:"poll_seconds"`
	DataDir     string `yaml:"data_dir"`

	Feed struct {
		RSSURL          string `yaml:"rss_url"`
		Account         string `yaml:"account"`
		MaxResults      int    `yaml:"max_results"`
		ScraperFallback bool   `yaml:"scraper_fallback"`
	} `yaml:"feed"`

	Dedup struct {
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
		WindowCapacity      int     `yaml:"window_capacity"`
		RetryFailed         bool    `yaml:"retry_failed"`
	} `yaml:"dedup"`

	Universe struct {
		TickerFile string `yaml:"ticker_file"`
	} `yaml:"universe"`

	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`

	Publisher struct {
		MaxPostLen     int `yaml:"max_post_len"`
		BackoffMinutes int `yaml:"backoff_minutes"`
		PostDelaySecs  int `yaml:"post_delay_secs"`
	} `yaml:"publisher"`

	Chart struct {
		Enabled    bool   `yaml:"enabled"`
		ServiceURL string `yaml:"service_url"`
		Timeframe  string `yaml:"timeframe"`
	} `yaml:"chart"`

	Trading struct {
		StartingCash     float64  `yaml:"starting_cash"`
		CashReserve      float64  `yaml:"cash_reserve"`
		Blacklist        []string `yaml:"blacklist"`
		MaxCompanies     int      `yaml:"max_companies"`
		RealMoney        bool     `yaml:"real_money"`
		PersistPortfolio bool     `yaml:"persist_portfolio"`
	} `yaml:"trading"`

	MarketHours struct {
		OpenHour    int `yaml:"open_hour"`
		OpenMinute  int `yaml:"open_minute"`
		CloseHour   int `yaml:"close_hour"`
		CloseMinute int `yaml:"close_minute"`
	} `yaml:"market_hours"`

	Notify struct {
		TelegramEnabled bool   `yaml:"telegram_enabled"`
		ChatID          string `yaml:"chat_id"`
	} `yaml:"notify"`

	Web struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"web"`
}

func (c *Config) Validate() error {
	if c.Feed.RSSURL == "" && c.Feed.Account == "" {
		return errors.New("feed.rss_url or feed.account must be set")
	}
	if c.Dedup.SimilarityThreshold <= 0 || c.Dedup.SimilarityThreshold > 1 {
		return fmt.Errorf("dedup.similarity_threshold must be in (0,1], got %.2f", c.Dedup.SimilarityThreshold)
	}
	if c.Dedup.WindowCapacity <= 0 {
		return fmt.Errorf("dedup.window_capacity must be positive, got %d", c.Dedup.WindowCapacity)
	}
	if c.LLM.Provider != "OPENAI" && c.LLM.Provider != "CLAUDE" && c.LLM.Provider != "NOOP" {
		return fmt.Errorf("llm.provider must be 'OPENAI', 'CLAUDE', or 'NOOP', got '%s'", c.LLM.Provider)
	}
	if c.Trading.CashReserve < 0 {
		return fmt.Errorf("trading.cash_reserve must be non-negative, got %.2f", c.Trading.CashReserve)
	}
	if c.Trading.StartingCash <= c.Trading.CashReserve {
		return fmt.Errorf("trading.starting_cash (%.2f) must exceed trading.cash_reserve (%.2f)",
			c.Trading.StartingCash, c.Trading.CashReserve)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.PollSeconds == 0 {
		c.PollSeconds = 120
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Feed.MaxResults == 0 {
		c.Feed.MaxResults = 10
	}
	if c.Dedup.SimilarityThreshold == 0 {
		c.Dedup.SimilarityThreshold = 0.9
	}
	if c.Dedup.WindowCapacity == 0 {
		c.Dedup.WindowCapacity = 50
	}
	if c.Universe.TickerFile == "" {
		c.Universe.TickerFile = "tickers.txt"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 300
	}
	if c.Publisher.MaxPostLen == 0 {
		c.Publisher.MaxPostLen = 240
	}
	if c.Publisher.BackoffMinutes == 0 {
		c.Publisher.BackoffMinutes = 30
	}
	if c.Publisher.PostDelaySecs == 0 {
		c.Publisher.PostDelaySecs = 5
	}
	if c.Chart.Timeframe == "" {
		c.Chart.Timeframe = "1H"
	}
	if c.Trading.StartingCash == 0 {
		c.Trading.StartingCash = 10000
	}
	if c.Trading.CashReserve == 0 {
		c.Trading.CashReserve = 1000
	}
	if len(c.Trading.Blacklist) == 0 {
		c.Trading.Blacklist = []string{"GOOG", "GOOGL", "META", "TSLA"}
	}
	if c.Trading.MaxCompanies == 0 {
		c.Trading.MaxCompanies = 5
	}
	if c.MarketHours.OpenHour == 0 {
		c.MarketHours.OpenHour = 9
		c.MarketHours.OpenMinute = 30
	}
	if c.MarketHours.CloseHour == 0 {
		c.MarketHours.CloseHour = 16
	}
	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// RequireEnv returns the value of a required credential variable, or an
// error that should abort startup. Silent degraded operation is not
// allowed for missing credentials.
func RequireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return v, nil
}
