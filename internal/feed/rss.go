// Package feed fetches headline items from the news wire: the RSS
// endpoint as the primary source, with a page scraper fallback for
// when the feed is unavailable.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"scryptbot/internal/api"
	"scryptbot/internal/logger"
	"scryptbot/internal/types"
)

// RSSClient fetches and decodes the headline RSS feed.
type RSSClient struct {
	url    string
	client *api.Client
}

// NewRSSClient creates a feed client for the given RSS URL.
func NewRSSClient(url string) *RSSClient {
	return &RSSClient{
		url:    url,
		client: api.NewClient(api.WithTimeout(20 * time.Second)),
	}
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	GUID    string `xml:"guid"`
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// RecentItems fetches feed entries, newest first as the feed orders
// them, capped at max. An item without a GUID falls back to its link
// as the source identifier.
func (c *RSSClient) RecentItems(ctx context.Context, max int) ([]types.Headline, error) {
	resp, err := c.client.GET(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("feed decode failed: %w", err)
	}

	now := time.Now()
	items := make([]types.Headline, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		id := it.GUID
		if id == "" {
			id = it.Link
		}
		if id == "" || it.Title == "" {
			continue
		}
		items = append(items, types.Headline{
			SourceID:  id,
			Text:      it.Title,
			Link:      it.Link,
			FetchedAt: now,
		})
		if max > 0 && len(items) >= max {
			break
		}
	}

	logger.Debug(ctx, "Feed fetched", "url", c.url, "items", len(items))
	return items, nil
}
