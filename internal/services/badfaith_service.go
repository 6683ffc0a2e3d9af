package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"

	"github.com/ohisee/backend/internal/config"
)

// ScoreInput is the report content handed to the bad-faith scorer.
type ScoreInput struct {
	Title          string
	Description    string
	Category       string
	PreviousReport bool
}

// ScoreResult never represents an error: the scorer degrades silently to a
// fallback so submission is never blocked by the AI provider.
type ScoreResult struct {
	Score       int      `json:"score"`
	Flags       []string `json:"flags"`
	Suggestions []string `json:"suggestions"`
}

// Scorer rates indicators of bad-faith reporting.
type Scorer interface {
	Score(ctx context.Context, in ScoreInput) ScoreResult
}

var stubSuggestions = []string{
	"Include specific dates, times and locations where possible.",
	"Describe what you observed directly rather than what you heard from others.",
}

type BadFaithService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

func NewBadFaithService(cfg *config.Config) *BadFaithService {
	return &BadFaithService{
		apiKey: cfg.OpenAIAPIKey,
		apiURL: cfg.OpenAIAPIURL,
		model:  cfg.OpenAIModel,
		client: &http.Client{Timeout: cfg.AITimeout},
	}
}

// --- provider wire types ---

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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Score rates the report. Without an API key it returns a low random score;
// with one it asks the model for strict JSON and falls back to
// {0, ["detection_failed"], []} on any call or parse failure.
func (s *BadFaithService) Score(ctx context.Context, in ScoreInput) ScoreResult {
	if s.apiKey == "" {
		return ScoreResult{
			Score:       rand.Intn(30),
			Flags:       []string{},
			Suggestions: stubSuggestions,
		}
	}

	prompt := fmt.Sprintf(`You are reviewing a confidential workplace report for indicators of bad-faith reporting: vague language, lack of verifiable detail, personal vendetta patterns, implausibility, and lack of actionability.

Category: %s
Title: %s
Description: %s
Reporter says this was reported before: %t

Respond with a strict JSON object only, no prose: {"score": <integer 0-100, higher means more likely bad faith>, "flags": [<short flag strings>], "suggestions": [<suggestions to improve the report>]}`,
		in.Category, in.Title, in.Description, in.PreviousReport)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		slog.Error("bad-faith scoring failed", "error", err)
		return fallbackResult()
	}

	var result ScoreResult
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &result); err != nil {
		slog.Error("bad-faith response parse failed", "error", err)
		return fallbackResult()
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}
	if result.Flags == nil {
		result.Flags = []string{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	return result
}

func fallbackResult() ScoreResult {
	return ScoreResult{Score: 0, Flags: []string{"detection_failed"}, Suggestions: []string{}}
}

// ImproveText rewrites user text for clarity, with a deterministic mock when
// no provider is configured.
func (s *BadFaithService) ImproveText(ctx context.Context, text string) string {
	trimmed := strings.TrimSpace(text)
	if s.apiKey == "" {
		if trimmed == "" {
			return ""
		}
		improved := strings.ToUpper(trimmed[:1]) + trimmed[1:]
		if !strings.HasSuffix(improved, ".") && !strings.HasSuffix(improved, "!") && !strings.HasSuffix(improved, "?") {
			improved += "."
		}
		return improved
	}

	prompt := "Improve the clarity and professionalism of the following report text. Keep the meaning and all factual details unchanged. Respond with the improved text only.\n\n" + trimmed
	content, err := s.complete(ctx, prompt)
	if err != nil {
		slog.Error("improve-text failed", "error", err)
		return trimmed
	}
	return strings.TrimSpace(content)
}

// Assist answers a free-form reporting question, with a canned fallback when
// no provider is configured.
func (s *BadFaithService) Assist(ctx context.Context, prompt string) string {
	if s.apiKey == "" {
		return "Describe what happened, when and where it happened, and who was involved. Specific, first-hand details make a report easier to investigate."
	}

	content, err := s.complete(ctx, "You help employees write clear confidential reports. "+prompt)
	if err != nil {
		slog.Error("assist failed", "error", err)
		return "Unable to generate a suggestion right now. Please continue with your report."
	}
	return strings.TrimSpace(content)
}

func (s *BadFaithService) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
