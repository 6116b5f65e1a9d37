// Package social is the publisher boundary: a thin client for the
// platform's v2 JSON API covering timeline reads, posting with media,
// replies, and reshares. Rate-limit responses surface as
// ErrRateLimited so the poll loop can apply its long backoff.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"scryptbot/internal/api"
	"scryptbot/internal/logger"
	"scryptbot/internal/types"
)

// ErrRateLimited is returned when the platform answers 429. The caller
// is expected to back off for a long interval before the next cycle.
var ErrRateLimited = errors.New("publisher rate limited")

// Params configures the client. ReadToken is the app bearer token used
// for timeline reads; WriteToken is the user-context token used for
// posting.
type Params struct {
	BaseURL    string
	UploadURL  string
	ReadToken  string
	WriteToken string
}

// Client talks to the social platform API.
type Client struct {
	params  Params
	client  *api.Client
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a publisher client. Calls are paced to one per
// second to stay under the platform's burst limits.
func NewClient(p Params) *Client {
	if p.BaseURL == "" {
		p.BaseURL = "https://api.twitter.com/2"
	}
	if p.UploadURL == "" {
		p.UploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	}
	return &Client{
		params:  p,
		client:  api.NewClient(api.WithBaseURL(p.BaseURL), api.WithTimeout(30*time.Second), api.WithLogging(true)),
		http:    &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// wrapStatus converts 429 responses into ErrRateLimited.
func wrapStatus(err error) error {
	var se *api.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, se.Body)
	}
	return err
}

type postData struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// RecentPosts returns the most recent posts of an account, newest first.
func (c *Client) RecentPosts(ctx context.Context, accountID string, max int) ([]types.Headline, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if max <= 0 || max > 100 {
		max = 10
	}

	url := fmt.Sprintf("/users/%s/tweets?max_results=%d&tweet.fields=created_at,author_id", accountID, max)
	resp, err := c.client.GET(ctx, url, map[string]string{
		"Authorization": "Bearer " + c.params.ReadToken,
	})
	if err != nil {
		return nil, wrapStatus(err)
	}

	var r struct {
		Data []struct {
			ID       string `json:"id"`
			Text     string `json:"text"`
			AuthorID string `json:"author_id"`
		} `json:"data"`
	}
	if err := resp.DecodeJSON(&r); err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]types.Headline, 0, len(r.Data))
	for _, p := range r.Data {
		items = append(items, types.Headline{
			SourceID:  p.ID,
			Text:      p.Text,
			AuthorID:  p.AuthorID,
			FetchedAt: now,
		})
	}
	return items, nil
}

// Publish posts text, optionally attaching the image at imagePath.
func (c *Client) Publish(ctx context.Context, text, imagePath string) (types.Post, error) {
	if err := c.wait(ctx); err != nil {
		return types.Post{}, err
	}

	body := map[string]any{"text": text}
	if imagePath != "" {
		mediaID, err := c.uploadMedia(ctx, imagePath)
		if err != nil {
			// A post without its chart is still worth publishing.
			logger.ErrorWithErr(ctx, "Media upload failed, posting without image", err, "image", imagePath)
		} else {
			body["media"] = map[string]any{"media_ids": []string{mediaID}}
		}
	}

	return c.createPost(ctx, body)
}

// Reply posts text as a reply to an existing post.
func (c *Client) Reply(ctx context.Context, text, inReplyTo string) (types.Post, error) {
	if err := c.wait(ctx); err != nil {
		return types.Post{}, err
	}
	body := map[string]any{
		"text":  text,
		"reply": map[string]string{"in_reply_to_tweet_id": inReplyTo},
	}
	return c.createPost(ctx, body)
}

func (c *Client) createPost(ctx context.Context, body map[string]any) (types.Post, error) {
	resp, err := c.client.POST(ctx, "/tweets", body, map[string]string{
		"Authorization": "Bearer " + c.params.WriteToken,
	})
	if err != nil {
		return types.Post{}, wrapStatus(err)
	}

	var r postData
	if err := resp.DecodeJSON(&r); err != nil {
		return types.Post{}, err
	}
	if r.Data.ID == "" {
		return types.Post{}, errors.New("publish succeeded but no post id returned")
	}
	return types.Post{ID: r.Data.ID, Text: r.Data.Text}, nil
}

// Reshare reposts an existing post on the bot's own timeline.
func (c *Client) Reshare(ctx context.Context, postID string) bool {
	if err := c.wait(ctx); err != nil {
		return false
	}

	me, err := c.selfID(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to resolve own account id", err)
		return false
	}

	url := fmt.Sprintf("/users/%s/retweets", me)
	_, err = c.client.POST(ctx, url, map[string]string{"tweet_id": postID}, map[string]string{
		"Authorization": "Bearer " + c.params.WriteToken,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Reshare failed", wrapStatus(err), "post_id", postID)
		return false
	}
	return true
}

func (c *Client) selfID(ctx context.Context) (string, error) {
	resp, err := c.client.GET(ctx, "/users/me", map[string]string{
		"Authorization": "Bearer " + c.params.WriteToken,
	})
	if err != nil {
		return "", wrapStatus(err)
	}
	var r struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := resp.DecodeJSON(&r); err != nil {
		return "", err
	}
	return r.Data.ID, nil
}

// uploadMedia uploads an image via the media endpoint and returns the
// media id to attach to a post.
func (c *Client) uploadMedia(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", filepath.Base(imagePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.params.UploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.params.WriteToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("media upload http %d: %s", resp.StatusCode, string(respBody))
	}

	var r struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.Unmarshal(respBody, &r); err != nil {
		return "", err
	}
	if r.MediaIDString == "" {
		return "", errors.New("media upload returned no id")
	}
	return r.MediaIDString, nil
}
