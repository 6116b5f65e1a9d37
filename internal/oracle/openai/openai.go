package openai

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

// Oracle implements the judgment oracle using the OpenAI chat API.
type Oracle struct {
	cfg      *store.Config
	endpoint string
}

// New creates a new OpenAI-backed oracle. The endpoint can be
// overridden via OPENAI_API_ENDPOINT for proxies.
func New(cfg *store.Config) *Oracle {
	endpoint := "https://api.openai.com/v1/chat/completions"
	if ep := os.Getenv("OPENAI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Oracle{cfg: cfg, endpoint: endpoint}
}

// Judge analyzes a headline via the chat completions API.
func (o *Oracle) Judge(ctx context.Context, headline string) (types.Judgment, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return types.Judgment{}, errors.New("OPENAI_API_KEY missing")
	}

	body := map[string]any{
		"model": o.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "user", "content": oracle.BuildPrompt(headline)},
		},
		"max_tokens":  o.cfg.LLM.MaxTokens,
		"temperature": o.cfg.LLM.Temperature,
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", o.endpoint, bytes.NewReader(bb))
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return types.Judgment{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return types.Judgment{}, fmt.Errorf("openai http %d: %s", resp.StatusCode, string(b))
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.Judgment{}, err
	}
	if len(r.Choices) == 0 {
		return types.Judgment{}, errors.New("no choices in response")
	}

	return oracle.ParseJudgment(r.Choices[0].Message.Content)
}
