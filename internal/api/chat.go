package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
)

// ChatRequest is the outbound chat-completions payload. Messages must
// already be sanitized; nothing beyond role/content may leave the process.
type ChatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

// ChatResult is the normalized outcome of a chat-completions call.
type ChatResult struct {
	Content string
	// Citations is the dedicated citations field when the response
	// carries one, still in its structured wire form.
	Citations []any
	// Moderations is the out-of-band moderation/metrics object from the
	// terminal chunk.
	Moderations map[string]any
}

// ChatStreamHandler receives incremental content fragments as they
// arrive. Called sequentially from the draining goroutine.
type ChatStreamHandler func(delta string)

// ChatCompletion performs one synchronous chat-completions call.
func (c *Client) ChatCompletion(req ChatRequest) (*ChatResult, error) {
	req.Stream = false
	url := c.apiURL(models.PathChatCompletions, c.deploymentID)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	body, _, err := c.doRequest(http.MethodPost, url, bytes.NewReader(payload), c.authHeaders(), "chat completion", models.PredictionsTimeout)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	choice := parsed.Get("choices.0")
	if !choice.Exists() {
		return nil, apierrors.NewParseError("no choices in chat response", "choices.0")
	}

	result := &ChatResult{
		Content:     choice.Get("message.content").String(),
		Citations:   citationsValue(parsed.Get("citations")),
		Moderations: moderationsValue(parsed.Get("datarobot_moderations")),
	}
	return result, nil
}

// ChatCompletionStream performs a streaming chat-completions call,
// delivering content deltas to onDelta as they arrive. It drains the
// stream fully: the accumulated content and the out-of-band fields from
// the terminal chunk come back in the result.
func (c *Client) ChatCompletionStream(req ChatRequest, onDelta ChatStreamHandler) (*ChatResult, error) {
	req.Stream = true
	url := c.apiURL(models.PathChatCompletions, c.deploymentID)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.authHeaders() {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apierrors.NewNetworkError("chat completion stream", url, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, url, "chat completion stream failed", truncateBody(data))
	}

	return drainChatStream(resp.Body, onDelta)
}

// drainChatStream consumes the SSE body sequentially until the terminal
// chunk. Lines that aren't valid JSON are skipped; the backend pads the
// stream with keepalives and a final [DONE] marker.
func drainChatStream(body io.Reader, onDelta ChatStreamHandler) (*ChatResult, error) {
	result := &ChatResult{}
	var content strings.Builder
	sawTerminal := false

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		chunk, ok := parseChatChunk(scanner.Text())
		if !ok {
			continue
		}

		if chunk.DeltaContent != "" {
			content.WriteString(chunk.DeltaContent)
			if onDelta != nil {
				onDelta(chunk.DeltaContent)
			}
		}

		if chunk.FinishReason == "stop" {
			sawTerminal = true
			// Non-streaming shaped terminal chunks carry the full message
			if chunk.Content != "" && content.Len() == 0 {
				content.WriteString(chunk.Content)
			}
			result.Moderations = chunk.Moderations
			result.Citations = chunk.Citations
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apierrors.NewNetworkError("chat completion stream", "", err)
	}
	if !sawTerminal {
		return nil, apierrors.NewParseError("stream ended without terminal chunk", "finish_reason")
	}

	result.Content = content.String()
	return result, nil
}

// streamChunk is ChatChunk plus the dedicated citations field, which can
// ride out-of-band on the terminal chunk.
type streamChunk struct {
	models.ChatChunk
	Citations []any
}

// parseChatChunk decodes one SSE line. Returns ok=false for blank lines,
// the [DONE] marker and anything that isn't valid JSON.
func parseChatChunk(line string) (streamChunk, bool) {
	var chunk streamChunk

	data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if data == "" || data == "[DONE]" || !gjson.Valid(data) {
		return chunk, false
	}

	parsed := gjson.Parse(data)
	choice := parsed.Get("choices.0")
	if !choice.Exists() {
		return chunk, false
	}

	chunk.DeltaContent = choice.Get("delta.content").String()
	chunk.Content = choice.Get("message.content").String()
	chunk.FinishReason = choice.Get("finish_reason").String()
	chunk.Moderations = moderationsValue(parsed.Get("datarobot_moderations"))
	chunk.Citations = citationsValue(parsed.Get("citations"))
	return chunk, true
}

func moderationsValue(result gjson.Result) map[string]any {
	if !result.Exists() {
		return nil
	}
	if m, ok := result.Value().(map[string]any); ok {
		return m
	}
	return nil
}

func citationsValue(result gjson.Result) []any {
	if !result.Exists() || !result.IsArray() {
		return nil
	}
	if arr, ok := result.Value().([]any); ok {
		return arr
	}
	return nil
}
