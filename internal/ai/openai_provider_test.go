package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, status int, chunks []string, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	return streamServer(t, status, chunks, true, captured)
}

// streamServer writes one chunk per fragment. When finish is false the body
// ends after the last fragment with no finish reason and no [DONE].
func streamServer(t *testing.T, status int, chunks []string, finish bool, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			body := map[string]interface{}{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			*captured = body
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			payload := fmt.Sprintf(`{"id":"x","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`, c)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		if !finish {
			return
		}
		_, _ = fmt.Fprint(w, `data: {"id":"x","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`+"\n\n")
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAIProvider_StreamsFragments(t *testing.T) {
	var body map[string]interface{}
	srv := sseServer(t, http.StatusOK, []string{"That sounds ", "", "rough"}, &body)
	defer srv.Close()

	p, err := NewOpenAIProvider(ChatConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "gpt-4o"})
	require.NoError(t, err)

	stream, err := p.Stream(context.Background(), []Segment{
		{Role: RoleSystem, Text: "persona"},
		{Role: RoleUser, Text: "hi"},
	})
	require.NoError(t, err)
	defer stream.Close()

	var got []string
	for {
		frag, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, frag)
	}
	assert.Equal(t, []string{"That sounds ", "rough"}, got)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.InDelta(t, Temperature, body["temperature"], 0.0001)
	assert.EqualValues(t, MaxTokens, body["max_tokens"])
	assert.Equal(t, true, body["stream"])
	msgs, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
}

func TestOpenAIProvider_BodyEndingWithoutFinishIsUnexpected(t *testing.T) {
	srv := streamServer(t, http.StatusOK, []string{"par"}, false, nil)
	defer srv.Close()

	p, err := NewOpenAIProvider(ChatConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "gpt-4o"})
	require.NoError(t, err)

	stream, err := p.Stream(context.Background(), []Segment{{Role: RoleUser, Text: "hi"}})
	require.NoError(t, err)
	defer stream.Close()

	frag, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "par", frag)

	_, err = stream.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestOpenAIProvider_UpstreamError(t *testing.T) {
	srv := sseServer(t, http.StatusTooManyRequests, nil, nil)
	defer srv.Close()

	p, err := NewOpenAIProvider(ChatConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "gpt-4o"})
	require.NoError(t, err)

	_, err = p.Stream(context.Background(), []Segment{{Role: RoleUser, Text: "hi"}})
	assert.Error(t, err)
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(ChatConfig{Model: "gpt-4o"})
	assert.Error(t, err)
}
