package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/transport"
)

const (
	defaultOpenAIURL = "https://api.openai.com/v1"
	// DefaultModel supports response_format json_object.
	DefaultModel = "gpt-3.5-turbo-1106"
	// DefaultTimeout bounds one completion call.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 256
)

var _ Generator = (*OpenAI)(nil)

// OpenAIOption configures the OpenAI client.
type OpenAIOption func(*OpenAI)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient transport.HTTPClient) OpenAIOption {
	return func(c *OpenAI) {
		c.httpClient = httpClient
	}
}

// WithBaseURL points the client at any OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *OpenAI) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel overrides the model name.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAI) {
		if model != "" {
			c.model = model
		}
	}
}

// OpenAI is a chat-completions client.
type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient transport.HTTPClient
}

// NewOpenAI creates a client. An empty key is a configuration error.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &feed.ConfigError{Provider: "analysis", Setting: "OpenAI API key"}
	}
	c := &OpenAI{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    defaultOpenAIURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate runs one chat completion.
func (c *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.UserPrompt})
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("openai request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Response{}, &APIError{Provider: "openai", Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Response{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Response{}, errors.New("empty openai response")
	}
	return Response{Content: cr.Choices[0].Message.Content, Model: cr.Model}, nil
}

func errorMessage(raw []byte) string {
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
