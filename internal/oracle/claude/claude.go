package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"scryptbot/internal/oracle"
	"scryptbot/internal/store"
	"scryptbot/internal/trace"
	"scryptbot/internal/types"
)

// Oracle implements the judgment oracle using the Anthropic messages API.
type Oracle struct {
	cfg      *store.Config
	endpoint string
}

// New creates a new Claude-backed oracle. Set CLAUDE_API_ENDPOINT to
// route through a proxy.
func New(cfg *store.Config) *Oracle {
	endpoint := "https://api.anthropic.com/v1/messages"
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Oracle{cfg: cfg, endpoint: endpoint}
}

// Judge analyzes a headline via the messages API.
func (o *Oracle) Judge(ctx context.Context, headline string) (types.Judgment, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return types.Judgment{}, errors.New("CLAUDE_API_KEY missing")
	}

	body := map[string]any{
		"model":      o.cfg.LLM.Model,
		"max_tokens": o.cfg.LLM.MaxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": oracle.BuildPrompt(headline)},
		},
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", o.endpoint, bytes.NewReader(bb))
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return types.Judgment{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return types.Judgment{}, fmt.Errorf("claude http %d: %s", resp.StatusCode, string(b))
	}

	var r struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.Judgment{}, err
	}
	if len(r.Content) == 0 {
		return types.Judgment{}, errors.New("no content in response")
	}

	return oracle.ParseJudgment(r.Content[0].Text)
}
