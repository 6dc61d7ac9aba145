package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-transcript-gpa/internal/ocr"
	"go-transcript-gpa/pkg/models"
)

func successResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func rawTextOf(body string) models.RawText {
	return models.RawText{Segments: []models.PassText{
		{Source: models.PassOriginal, Body: body},
	}}
}

func newTestClient(serverURL string, overrides CreditOverrides) *Client {
	return NewClient(serverURL, "deepseek-chat", 10*time.Second, overrides)
}

func TestExtract_WellFormedReply(t *testing.T) {
	reply := `[{"subject":"高等数学","score":85,"credit":4.0},{"subject":"大学英语","score":90,"credit":2.0}]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "deepseek-chat", reqBody["model"])
		assert.InDelta(t, 0.1, reqBody["temperature"], 1e-9)

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 2)
		user := messages[1].(map[string]interface{})
		assert.Contains(t, user["content"], "成绩单文本")

		require.NoError(t, json.NewEncoder(w).Encode(successResponse(reply)))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	records := client.Extract(context.Background(), rawTextOf("成绩单文本 高等数学 85 4学分"), "test-key")

	require.Len(t, records, 2)
	assert.Equal(t, "高等数学", records[0].Subject)
	score, ok := models.CoerceNumber(records[0].Score)
	require.True(t, ok)
	assert.Equal(t, 85.0, score)
	credit, ok := models.CoerceNumber(records[0].Credit)
	require.True(t, ok)
	assert.Equal(t, 4.0, credit)
}

func TestExtract_StripsCodeFences(t *testing.T) {
	reply := "```json\n[{\"subject\":\"X\",\"score\":70,\"credit\":1.0}]\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(successResponse(reply))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	records := client.Extract(context.Background(), rawTextOf("some text"), "test-key")

	require.Len(t, records, 1)
	assert.Equal(t, "X", records[0].Subject)
}

func TestExtract_EmptyInput_NoNetworkCall(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	records := client.Extract(context.Background(), models.RawText{}, "test-key")
	assert.Empty(t, records)

	records = client.Extract(context.Background(), rawTextOf("   \n  "), "test-key")
	assert.Empty(t, records)

	assert.Equal(t, int64(0), calls.Load(), "empty input must not trigger a network call")
}

func TestExtract_ErrorMarkedInput_NoNetworkCall(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	raw := rawTextOf(ocr.SentinelEngineNotFound + " tesseract not found")

	records := client.Extract(context.Background(), raw, "test-key")

	assert.Empty(t, records)
	assert.Equal(t, int64(0), calls.Load(), "error-marked input must not trigger a network call")
}

func TestExtract_MalformedReply_ReturnsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose only", "I could not find any course data in the text."},
		{"truncated json", `[{"subject":"高等数学","score":85,`},
		{"object instead of list", `{"subject":"高等数学","score":85,"credit":4.0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(successResponse(tt.reply))
			}))
			defer server.Close()

			client := newTestClient(server.URL, nil)
			records := client.Extract(context.Background(), rawTextOf("text"), "test-key")
			assert.Empty(t, records)
		})
	}
}

func TestExtract_TransportFailure_ReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	records := client.Extract(context.Background(), rawTextOf("text"), "test-key")
	assert.Empty(t, records)

	// Unreachable endpoint behaves the same way
	dead := newTestClient("http://127.0.0.1:1", nil)
	records = dead.Extract(context.Background(), rawTextOf("text"), "test-key")
	assert.Empty(t, records)
}

func TestExtract_NoAPIKey_ReturnsEmpty(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	records := client.Extract(context.Background(), rawTextOf("text"), "")

	assert.Empty(t, records)
	assert.Equal(t, int64(0), calls.Load())
}

func TestExtract_AppliesCreditOverrides(t *testing.T) {
	reply := `[{"subject":"大学体育","score":95,"credit":3.0}]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(successResponse(reply))
	}))
	defer server.Close()

	client := newTestClient(server.URL, CreditOverrides{"大学体育": 1.0})
	records := client.Extract(context.Background(), rawTextOf("text"), "test-key")

	require.Len(t, records, 1)
	credit, ok := models.CoerceNumber(records[0].Credit)
	require.True(t, ok)
	assert.Equal(t, 1.0, credit, "configured override must win over the model's credit")
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fences", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[]\n```", "[]"},
		{"bare fence", "```\n[]\n```", "[]"},
		{"leading whitespace", "  ```json\n[1]\n```  ", "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFences(tt.input))
		})
	}
}
