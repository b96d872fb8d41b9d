package ai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"arbitrage/internal/models"
)

var llmJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const llmStrategyConfidence = 0.50
const llmTopPerformersInPrompt = 15

// LLMClient is a thin chat-completion caller. httpLLMClient is the only
// implementation; tests substitute a fake.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// httpLLMClient posts an OpenAI-compatible chat completion request and
// returns the assistant message content verbatim.
type httpLLMClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewLLMClient(endpoint, apiKey, model string) LLMClient {
	return &httpLLMClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *httpLLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := llmJSON.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := llmJSON.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm response had no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// GenerateLLMCandidates asks the configured chat completion endpoint for
// fresh keyword ideas given a summary of what already performs well, and
// parses its response as a flat JSON array of keyword strings. Any
// failure anywhere in the round trip — network, non-200 status,
// malformed JSON — is logged and swallowed: this strategy never blocks
// the rest of a discovery cycle.
func GenerateLLMCandidates(ctx context.Context, insights *KeywordInsights, client LLMClient, log *zap.Logger) []CandidateProposal {
	prompt := buildLLMPrompt(insights)

	reply, err := client.Complete(ctx, prompt)
	if err != nil {
		log.Warn("llm candidate generation failed", zap.Error(err))
		return nil
	}

	var keywords []string
	if err := llmJSON.Unmarshal([]byte(extractJSONArray(reply)), &keywords); err != nil {
		log.Warn("llm reply was not a JSON string array", zap.Error(err))
		return nil
	}

	var out []CandidateProposal
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		out = append(out, CandidateProposal{
			Keyword:    kw,
			Strategy:   models.StrategyLLM,
			Confidence: llmStrategyConfidence,
			Reasoning:  "llm suggestion from top-performer summary",
		})
	}
	return out
}

func buildLLMPrompt(insights *KeywordInsights) string {
	var sb strings.Builder
	sb.WriteString("You are assisting a Yahoo Auctions to Amazon Japan resale search-term generator. ")
	sb.WriteString("Given the following proven search keywords, suggest new related search keywords. ")
	sb.WriteString("Respond with ONLY a JSON array of strings, nothing else.\n\nProven keywords:\n")

	count := 0
	for _, kw := range insights.TopPerformers {
		if count >= llmTopPerformersInPrompt {
			break
		}
		sb.WriteString("- ")
		sb.WriteString(kw.Keyword)
		sb.WriteString("\n")
		count++
	}
	return sb.String()
}

// extractJSONArray trims any prose a chat model wraps around the array
// it was asked for, keeping only the bracketed JSON.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return "[]"
	}
	return s[start : end+1]
}
