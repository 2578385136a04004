package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"go.uber.org/zap"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com"
	// Only line detections above this confidence make it into ExtractedText.
	textLineConfidenceThreshold = 80.0
)

type OpenAIClient struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

type GPTMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type GPTResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type ImageContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

func NewOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		zap.L().Fatal("OPENAI_API_KEY environment variable not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIClient{
		APIKey:  apiKey,
		BaseURL: openAIDefaultBaseURL,
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// GenerateResponse runs one chat completion with the given prompt. The
// temperature stays low so troubleshooting answers lean deterministic.
func (c *OpenAIClient) GenerateResponse(ctx context.Context, prompt string, maxTokens int) (string, error) {
	messages := []GPTMessage{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: prompt},
	}

	requestBody := map[string]interface{}{
		"model":       c.Model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": 0.2,
	}

	return c.sendRequest(ctx, requestBody)
}

type visionDetection struct {
	Labels []models.Label `json:"labels"`
	Lines  []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"text_lines"`
}

// AnalyzeImage runs label detection plus OCR over the session image and maps
// the outcome into an ImageAnalysis record.
func (c *OpenAIClient) AnalyzeImage(ctx context.Context, imageData []byte) (*models.ImageAnalysis, error) {
	prompt := `You are an image analysis service for a TV customer-support system. The image shows a TV screen, set-top box or related equipment.

Detect up to 20 labels describing the scene and every line of visible on-screen text (error banners especially).

Return a JSON object only, no other text, in this format:
{
	"labels": [{"name": string, "confidence": float between 0 and 100}],
	"text_lines": [{"text": string, "confidence": float between 0 and 100}]
}`

	content, err := c.sendImageRequest(ctx, imageData, prompt)
	if err != nil {
		return nil, err
	}

	var detection visionDetection
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &detection); err != nil {
		return nil, fmt.Errorf("failed to parse image analysis response: %w", err)
	}

	analysis := &models.ImageAnalysis{
		Labels:        detection.Labels,
		CustomLabels:  []models.Label{},
		ExtractedText: []string{},
	}
	if analysis.Labels == nil {
		analysis.Labels = []models.Label{}
	}
	for _, line := range detection.Lines {
		if line.Confidence > textLineConfidenceThreshold {
			analysis.ExtractedText = append(analysis.ExtractedText, line.Text)
		}
	}
	return analysis, nil
}

// DetectCustomLabels asks a fine-tuned model for domain-specific labels
// (set-top-box error states). Callers degrade to an empty list on failure.
func (c *OpenAIClient) DetectCustomLabels(ctx context.Context, imageData []byte, modelID string) ([]models.Label, error) {
	prompt := `Classify this image against known set-top-box fault states (no_service_error, hdmi_disconnected, pixelated_picture, frozen_frame, boot_loop, healthy). Return a JSON object only:
{
	"labels": [{"name": string, "confidence": float between 0 and 100}]
}
Only include labels with confidence of at least 70.`

	content, err := c.sendImageRequestWithModel(ctx, imageData, prompt, modelID)
	if err != nil {
		return nil, err
	}

	var detection visionDetection
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &detection); err != nil {
		return nil, fmt.Errorf("failed to parse custom label response: %w", err)
	}
	if detection.Labels == nil {
		return []models.Label{}, nil
	}
	return detection.Labels, nil
}

func (c *OpenAIClient) sendImageRequest(ctx context.Context, imageData []byte, prompt string) (string, error) {
	return c.sendImageRequestWithModel(ctx, imageData, prompt, "gpt-4o")
}

func (c *OpenAIClient) sendImageRequestWithModel(ctx context.Context, imageData []byte, prompt, model string) (string, error) {
	base64Image := base64.StdEncoding.EncodeToString(imageData)
	imageURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64Image)

	content := []ImageContent{
		{
			Type: "text",
			Text: prompt,
		},
		{
			Type: "image_url",
			ImageURL: &struct {
				URL string `json:"url"`
			}{
				URL: imageURL,
			},
		},
	}

	messages := []GPTMessage{
		{
			Role:    "user",
			Content: content,
		},
	}

	requestBody := map[string]interface{}{
		"model":      model,
		"messages":   messages,
		"max_tokens": 1000,
	}

	return c.sendRequest(ctx, requestBody)
}

func (c *OpenAIClient) sendRequest(ctx context.Context, requestBody map[string]interface{}) (string, error) {
	requestBodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var response GPTResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response JSON: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI API response")
	}

	content := response.Choices[0].Message.Content
	zap.L().Debug("OpenAI response content", zap.Int("length", len(content)))
	return content, nil
}

// stripCodeFence unwraps ```json ... ``` fences some models insist on adding
// around JSON-only answers.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
