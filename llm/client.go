package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/danschewy/lexiform/config"
	"github.com/danschewy/lexiform/model"
)

// Client talks to an OpenAI-compatible chat-completion endpoint. It is a
// pure transport: it never inspects the text it carries, and it does not
// retry failed calls.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

func NewClient(cfg config.OpenAI) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the message list and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, messages []model.Message) (string, error) {
	resp, err := c.post(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", errors.Wrap(err, "unmarshal response")
	}
	if len(apiResp.Choices) == 0 {
		return "", errors.New("empty response choices")
	}
	return apiResp.Choices[0].Message.Content, nil
}

// Stream sends the message list and forwards completion chunks to fn in
// arrival order until the provider signals the end of the stream. An error
// returned by fn aborts the stream.
func (c *Client) Stream(ctx context.Context, messages []model.Message, fn func(chunk string) error) error {
	resp, err := c.post(ctx, messages, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return errors.Wrap(err, "unmarshal chunk")
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := fn(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	return errors.Wrap(scanner.Err(), "read stream")
}

func (c *Client) post(ctx context.Context, messages []model.Message, stream bool) (*http.Response, error) {
	wire := make([]message, len(messages))
	for i, m := range messages {
		wire[i] = message{Role: m.Role, Content: m.Content}
	}

	body, err := json.Marshal(request{
		Model:       c.model,
		Messages:    wire,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "api call")
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)

		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return nil, errors.Errorf("api error %d: %s: %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, errors.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}
	return resp, nil
}
