package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"scryptbot/internal/dedup"
	"scryptbot/internal/logger"
	"scryptbot/internal/types"
)

// Scraper pulls headlines straight off the news site's pages. It is
// the fallback source when the RSS endpoint errors or returns nothing.
type Scraper struct {
	baseURL   string
	selector  string
	timeout   time.Duration
	userAgent string
}

// NewScraper creates a page scraper for the given site. The selector
// identifies headline elements on the page.
func NewScraper(baseURL, selector string) *Scraper {
	if selector == "" {
		selector = "div.headline-title"
	}
	return &Scraper{
		baseURL:   baseURL,
		selector:  selector,
		timeout:   30 * time.Second,
		userAgent: "Mozilla/5.0 (compatible; scryptbot/1.0)",
	}
}

// RecentItems scrapes headline text from the site, newest first as
// rendered. Scraped items have no stable source id, so the content
// hash of the headline doubles as the identifier.
func (s *Scraper) RecentItems(ctx context.Context, max int) ([]types.Headline, error) {
	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
	)
	c.SetRequestTimeout(s.timeout)

	now := time.Now()
	var items []types.Headline
	var visitErr error

	c.OnHTML(s.selector, func(e *colly.HTMLElement) {
		if max > 0 && len(items) >= max {
			return
		}
		text := e.Text
		if text == "" {
			return
		}
		link := e.ChildAttr("a", "href")
		if link == "" {
			link = e.Request.AbsoluteURL(e.Attr("href"))
		}
		items = append(items, types.Headline{
			SourceID:  "scrape:" + dedup.Hash(text),
			Text:      text,
			Link:      link,
			FetchedAt: now,
		})
	})

	c.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(s.baseURL); err != nil {
		return nil, fmt.Errorf("headline scrape failed: %w", err)
	}
	c.Wait()

	if visitErr != nil {
		return nil, fmt.Errorf("headline scrape failed: %w", visitErr)
	}

	logger.Debug(ctx, "Headlines scraped", "url", s.baseURL, "items", len(items))
	return items, nil
}
