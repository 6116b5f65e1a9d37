// Package chart renders price chart images for posts. Symbols are
// resolved to an exchange-prefixed form (NASDAQ:AAPL style) by probing
// the chart site, with results cached on disk so each ticker is
// resolved at most once.
package chart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scryptbot/internal/logger"
	"scryptbot/internal/storage"
)

// exchangePrefixes are tried in order when resolving a bare ticker.
var exchangePrefixes = []string{"NASDAQ", "NYSE", "AMEX", "NYSEARCA"}

// Renderer produces chart images via an external screenshot service.
type Renderer struct {
	serviceURL string
	symbolURL  string
	outDir     string
	store      *storage.Store
	http       *http.Client

	cache map[string]string
}

// Params configures a Renderer. ServiceURL is the screenshot service
// endpoint; SymbolURL is the chart site used to validate symbols.
type Params struct {
	ServiceURL string
	SymbolURL  string
	OutDir     string
	Store      *storage.Store
}

// NewRenderer creates a Renderer, loading any previously cached symbol
// resolutions from the store.
func NewRenderer(p Params) (*Renderer, error) {
	if p.SymbolURL == "" {
		p.SymbolURL = "https://www.tradingview.com/symbols"
	}
	if p.OutDir == "" {
		p.OutDir = os.TempDir()
	}
	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("chart output dir: %w", err)
	}

	cache := p.Store.LoadSymbolCache()
	if cache == nil {
		cache = make(map[string]string)
	}
	return &Renderer{
		serviceURL: p.ServiceURL,
		symbolURL:  p.SymbolURL,
		outDir:     p.OutDir,
		store:      p.Store,
		http:       &http.Client{Timeout: 45 * time.Second},
		cache:      cache,
	}, nil
}

// Resolve maps a bare ticker to its exchange-prefixed symbol, probing
// each exchange in turn. Returns "" when no exchange lists the ticker.
func (r *Renderer) Resolve(ctx context.Context, ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if sym, ok := r.cache[ticker]; ok {
		return sym
	}

	for _, prefix := range exchangePrefixes {
		candidate := prefix + ":" + ticker
		if r.symbolExists(ctx, prefix, ticker) {
			r.cache[ticker] = candidate
			if err := r.store.SaveSymbolCache(r.cache); err != nil {
				logger.Warn(ctx, "Failed to persist symbol cache", "error", err.Error())
			}
			return candidate
		}
	}

	// Negative results are cached too, so repeated misses stay cheap.
	r.cache[ticker] = ""
	if err := r.store.SaveSymbolCache(r.cache); err != nil {
		logger.Warn(ctx, "Failed to persist symbol cache", "error", err.Error())
	}
	return ""
}

// symbolExists fetches the symbol page and checks whether it is a real
// listing rather than the site's "symbol not found" page.
func (r *Renderer) symbolExists(ctx context.Context, exchange, ticker string) bool {
	pageURL := fmt.Sprintf("%s/%s-%s/", r.symbolURL, exchange, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; scryptbot/1.0)")

	resp, err := r.http.Do(req)
	if err != nil {
		logger.Warn(ctx, "Symbol probe failed", "url", pageURL, "error", err.Error())
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false
	}
	if resp.StatusCode != http.StatusOK {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return false
	}

	title := strings.ToLower(doc.Find("title").First().Text())
	if strings.Contains(title, "not found") || strings.Contains(title, "page cannot be found") {
		return false
	}
	return doc.Find("h1").Length() > 0
}

// Render resolves the ticker and captures a chart image, returning the
// local file path. An empty path with nil error means the ticker could
// not be resolved and the post should go out without a chart.
func (r *Renderer) Render(ctx context.Context, ticker, timeframe string) (string, error) {
	symbol := r.Resolve(ctx, ticker)
	if symbol == "" {
		logger.Info(ctx, "No exchange listing for ticker, skipping chart", "ticker", ticker)
		return "", nil
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", timeframe)
	captureURL := r.serviceURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captureURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chart capture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chart capture http %d: %s", resp.StatusCode, string(body))
	}

	name := fmt.Sprintf("chart_%s_%d.png", strings.ReplaceAll(symbol, ":", "_"), time.Now().UnixNano())
	path := filepath.Join(r.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
