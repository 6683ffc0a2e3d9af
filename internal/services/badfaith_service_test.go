package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ohisee/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubService() *BadFaithService {
	return NewBadFaithService(&config.Config{AITimeout: time.Second})
}

func serviceFor(srv *httptest.Server) *BadFaithService {
	return &BadFaithService{
		apiKey: "test-key",
		apiURL: srv.URL,
		model:  "test-model",
		client: srv.Client(),
	}
}

func chatReply(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestScoreStubMode(t *testing.T) {
	s := stubService()

	for i := 0; i < 20; i++ {
		result := s.Score(context.Background(), ScoreInput{Title: "t", Description: "d"})
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.Less(t, result.Score, 30)
		require.NotNil(t, result.Flags)
		assert.Empty(t, result.Flags)
		assert.Len(t, result.Suggestions, 2)
	}
}

func TestScoreParsesProviderJSON(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, `{"score": 85, "flags": ["vague_language"], "suggestions": ["add dates"]}`))
	defer srv.Close()

	result := serviceFor(srv).Score(context.Background(), ScoreInput{
		Title: "Something happened", Description: "Bad vibes all around", Category: "misconduct",
	})
	assert.Equal(t, 85, result.Score)
	assert.Equal(t, []string{"vague_language"}, result.Flags)
	assert.Equal(t, []string{"add dates"}, result.Suggestions)
}

func TestScoreStripsCodeFence(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, "```json\n{\"score\": 10, \"flags\": [], \"suggestions\": []}\n```"))
	defer srv.Close()

	result := serviceFor(srv).Score(context.Background(), ScoreInput{Title: "t", Description: "d"})
	assert.Equal(t, 10, result.Score)
}

func TestScoreClampsRange(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, `{"score": 150, "flags": null, "suggestions": null}`))
	defer srv.Close()

	result := serviceFor(srv).Score(context.Background(), ScoreInput{Title: "t", Description: "d"})
	assert.Equal(t, 100, result.Score)
	assert.NotNil(t, result.Flags)
	assert.NotNil(t, result.Suggestions)
}

func TestScoreFallbackOnMalformedOutput(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, "I think this report is probably fine."))
	defer srv.Close()

	result := serviceFor(srv).Score(context.Background(), ScoreInput{Title: "t", Description: "d"})
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, []string{"detection_failed"}, result.Flags)
	assert.Empty(t, result.Suggestions)
}

func TestScoreFallbackOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := serviceFor(srv).Score(context.Background(), ScoreInput{Title: "t", Description: "d"})
	assert.Equal(t, []string{"detection_failed"}, result.Flags)
}

func TestImproveTextMockIsDeterministic(t *testing.T) {
	s := stubService()

	first := s.ImproveText(context.Background(), "  the machine was broken  ")
	second := s.ImproveText(context.Background(), "  the machine was broken  ")
	assert.Equal(t, first, second)
	assert.Equal(t, "The machine was broken.", first)

	assert.Equal(t, "", s.ImproveText(context.Background(), "   "))
}

func TestAssistMockFallback(t *testing.T) {
	s := stubService()
	answer := s.Assist(context.Background(), "how do I describe the incident?")
	assert.NotEmpty(t, answer)
}
