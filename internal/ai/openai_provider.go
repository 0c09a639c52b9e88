package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	Temperature = 0.8
	MaxTokens   = 512

	responseHeaderTimeout = 90 * time.Second
)

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg ChatConfig) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("llm api key and model are required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	}
	// Only the wait for response headers is bounded here. The body of a
	// stream lives as long as the request context.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = responseHeaderTimeout
	clientCfg.HTTPClient = &http.Client{Transport: transport}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

func (p *OpenAIProvider) Stream(ctx context.Context, segments []Segment) (FragmentStream, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(segments))
	for _, seg := range segments {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    seg.Role,
			Content: seg.Text,
		})
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("llm stream request failed: %w", err)
	}
	return &openAIStream{stream: stream}, nil
}

type openAIStream struct {
	stream   *openai.ChatCompletionStream
	finished bool
}

// Next returns io.EOF only after a chunk carried a finish reason. A body that
// ends before that is reported as io.ErrUnexpectedEOF.
func (s *openAIStream) Next() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			if !s.finished {
				return "", fmt.Errorf("llm stream ended without finish reason: %w", io.ErrUnexpectedEOF)
			}
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("llm stream receive failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if resp.Choices[0].FinishReason != "" {
			s.finished = true
		}
		if text := resp.Choices[0].Delta.Content; text != "" {
			return text, nil
		}
	}
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}
