package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"coach_backend/internal/config"
	"coach_backend/internal/util"
	"coach_backend/pkg/monitoring"
	"coach_backend/pkg/tracing"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
)

// AIService talks to an OpenAI compatible chat completions endpoint. The
// configuration can be swapped at runtime by the config watcher.
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.client = &http.Client{Timeout: cfg.Timeout()}
}

func (s *AIService) snapshot() (config.AIConfig, *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.client
}

func (s *AIService) Configured() bool {
	cfg, _ := s.snapshot()
	return cfg.APIKey != ""
}

type AIChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []AIChatMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      AIChatMessage `json:"message"`
		Delta        AIChatMessage `json:"delta"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) newRequest(ctx context.Context, cfg config.AIConfig, body chatCompletionRequest) (*http.Request, error) {
	if cfg.APIKey == "" {
		return nil, util.ErrMissingAPIKey
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	return req, nil
}

func upstreamError(err error) error {
	var appErr *util.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return util.Upstream(err)
}

// complete runs a non-streaming completion and returns the first choice.
func (s *AIService) complete(ctx context.Context, operation string, body chatCompletionRequest) (content string, err error) {
	cfg, client := s.snapshot()
	if body.Model == "" {
		body.Model = cfg.Model
	}

	ctx, span := tracing.StartSpan(ctx, "ai."+operation, attribute.String("ai.model", body.Model))
	start := time.Now()
	defer func() {
		monitoring.ObserveAI(operation, start, err)
		tracing.EndSpan(span, err)
	}()

	req, err := s.newRequest(ctx, cfg, body)
	if err != nil {
		return "", upstreamError(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", upstreamError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", upstreamError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", upstreamError(fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, truncate(string(raw), 512)))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", upstreamError(fmt.Errorf("decode AI response: %w", err))
	}
	if result.Error != nil {
		return "", upstreamError(errors.New(result.Error.Message))
	}
	if len(result.Choices) == 0 {
		return "", upstreamError(errors.New("AI returned no choices"))
	}
	return result.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (s *AIService) Chat(ctx context.Context, messages []AIChatMessage) (string, error) {
	return s.complete(ctx, "chat", chatCompletionRequest{
		Messages:    messages,
		Temperature: 0.7,
	})
}

// SchemaFor reflects the JSON schema sent as a strict response format.
func SchemaFor(v any) (map[string]any, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(v)
	schema.Version = ""
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateJSON asks for output matching out's schema and decodes it into out.
func (s *AIService) GenerateJSON(ctx context.Context, model, system, user, schemaName string, out any) error {
	schema, err := SchemaFor(out)
	if err != nil {
		return err
	}
	content, err := s.complete(ctx, schemaName, chatCompletionRequest{
		Model: model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return err
	}

	dec := json.NewDecoder(strings.NewReader(stripCodeFence(content)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return util.Upstream(fmt.Errorf("model output does not match %s: %w", schemaName, err))
	}
	return nil
}

// stripCodeFence removes a ```json fence some providers wrap around output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ChatStream sends the completion with stream=true and forwards content
// deltas. Both channels are closed when the stream ends or ctx is done.
func (s *AIService) ChatStream(ctx context.Context, messages []AIChatMessage) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	cfg, client := s.snapshot()
	// streams outlive the client timeout; rely on ctx instead
	streamClient := &http.Client{Transport: client.Transport}

	go func() {
		defer close(out)
		defer close(errChan)

		ctx, span := tracing.StartSpan(ctx, "ai.chat_stream", attribute.String("ai.model", cfg.Model))
		start := time.Now()
		var streamErr error
		defer func() {
			monitoring.ObserveAI("chat_stream", start, streamErr)
			tracing.EndSpan(span, streamErr)
		}()
		fail := func(err error) {
			streamErr = upstreamError(err)
			errChan <- streamErr
		}

		req, err := s.newRequest(ctx, cfg, chatCompletionRequest{
			Model:       cfg.Model,
			Messages:    messages,
			Temperature: 0.7,
			Stream:      true,
		})
		if err != nil {
			fail(err)
			return
		}

		resp, err := streamClient.Do(req)
		if err != nil {
			fail(err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			fail(fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body)))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					fail(err)
				}
				return
			}

			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}

			var chunk chatCompletionResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case out <- chunk.Choices[0].Delta.Content:
			case <-ctx.Done():
				streamErr = ctx.Err()
				return
			}
		}
	}()

	return out, errChan
}
