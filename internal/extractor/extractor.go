// Package extractor turns raw OCR text into candidate academic records by
// way of an external chat-completion endpoint. The component swallows its
// own failures: any transport or parse problem degrades to an empty record
// set and a log line, never to an error crossing the extractor boundary.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"go-transcript-gpa/internal/logger"
	"go-transcript-gpa/internal/ocr"
	"go-transcript-gpa/pkg/models"
)

// Extractor produces candidate records from one image's raw OCR text.
type Extractor interface {
	Extract(ctx context.Context, raw models.RawText, apiKey string) []models.CandidateRecord
}

// Client implements Extractor against a DeepSeek-compatible chat-completions
// API.
type Client struct {
	endpoint  string
	model     string
	overrides CreditOverrides
	client    *http.Client
}

// NewClient creates an extractor client. baseURL is the API root (the
// chat-completions path is appended); overrides is the subject->credit
// policy table applied after parsing.
func NewClient(baseURL, model string, timeout time.Duration, overrides CreditOverrides) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		endpoint:  strings.TrimRight(baseURL, "/") + "/chat/completions",
		model:     model,
		overrides: overrides,
		client:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
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

// Extract sends the annotated OCR text to the language model and parses the
// reply into candidate records. Empty or error-marked input short-circuits
// to an empty result without any network call.
func (c *Client) Extract(ctx context.Context, raw models.RawText, apiKey string) []models.CandidateRecord {
	combined := raw.Combined()
	if raw.IsEmpty() || ocr.IsErrorText(combined) {
		return nil
	}
	if apiKey == "" {
		logger.Warn("Extraction skipped: no API key configured")
		return nil
	}

	content, err := c.complete(ctx, combined, apiKey)
	if err != nil {
		logger.WithError(err).Error("Language model call failed")
		return nil
	}

	records, err := parseReply(content)
	if err != nil {
		logger.WithError(err).WithField("reply", truncate(content, 300)).
			Error("Failed to parse language model reply")
		return nil
	}

	return ApplyCreditPolicy(records, c.overrides)
}

// complete performs the single chat-completions round trip. Temperature is
// kept low for determinism.
func (c *Client) complete(ctx context.Context, rawText, apiKey string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildExtractionPrompt(rawText, c.overrides)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response: no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// parseReply strips any code fences the model wrapped around the payload and
// decodes the record list.
func parseReply(content string) ([]models.CandidateRecord, error) {
	cleaned := stripCodeFences(content)

	var records []models.CandidateRecord
	if err := json.Unmarshal([]byte(cleaned), &records); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"records": len(records),
	}).Debug("Parsed extraction reply")
	return records, nil
}

// stripCodeFences removes enclosing Markdown fences (``` or ```json) that
// models add despite instructions.
func stripCodeFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
