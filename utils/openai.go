package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/feedback"
	"github.com/Perceptus-Labs/perceptus-coach/models"
	"go.uber.org/zap"
)

const (
	DefaultFeedbackURL   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultFeedbackModel = "llama3-70b-8192"
	DefaultEmbeddingsURL = "https://api.openai.com/v1/embeddings"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	APIKey string
	URL    string
	Model  string
	Client *http.Client
}

type GPTMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GPTResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient does not fail on an empty key; requests made without one
// return feedback.ErrMissingCredential so callers can fall back.
func NewOpenAIClient(apiKey, url, model string) *OpenAIClient {
	if apiKey == "" {
		zap.L().Warn("Feedback provider API key not set, rule-based feedback will be used")
	}
	if url == "" {
		url = DefaultFeedbackURL
	}
	if model == "" {
		model = DefaultFeedbackModel
	}
	return &OpenAIClient{
		APIKey: apiKey,
		URL:    url,
		Model:  model,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateFeedback implements feedback.Provider.
func (c *OpenAIClient) GenerateFeedback(ctx context.Context, modality models.Modality, req models.FeedbackRequest) (*models.FeedbackResult, error) {
	if c.APIKey == "" {
		return nil, feedback.ErrMissingCredential
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feedback request: %w", err)
	}

	requestBody := map[string]interface{}{
		"model": c.Model,
		"messages": []GPTMessage{
			{Role: "system", Content: feedback.SystemPrompt(modality)},
			{Role: "user", Content: string(payload)},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	content, err := c.sendRequest(ctx, requestBody)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("Feedback provider response content", zap.String("content", content))

	return feedback.ParseResult([]byte(content))
}

func (c *OpenAIClient) sendRequest(ctx context.Context, requestBody map[string]interface{}) (string, error) {
	requestBodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send HTTP request: %v", feedback.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d: %s", feedback.ErrProviderUnavailable, resp.StatusCode, string(bodyBytes))
	}

	var response GPTResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response JSON: %v", feedback.ErrInvalidResult, err)
	}

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no content in API response", feedback.ErrInvalidResult)
	}

	return response.Choices[0].Message.Content, nil
}

// VectorizePrompt creates an embedding with the OpenAI embeddings API.
func VectorizePrompt(ctx context.Context, apiKey, model, promptText string) ([]float32, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	requestBody := map[string]interface{}{
		"input": promptText,
		"model": model,
	}
	requestBodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", embeddingsURL, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var responseData struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &responseData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response JSON: %w", err)
	}
	if len(responseData.Data) == 0 {
		return nil, fmt.Errorf("no data in OpenAI API response")
	}
	return responseData.Data[0].Embedding, nil
}

// embeddingsURL is a variable so tests can point it at a local server.
var embeddingsURL = DefaultEmbeddingsURL
