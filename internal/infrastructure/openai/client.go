package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/paperforge/paperforge/internal/domain"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4o-mini"

// Client wraps the OpenAI chat completions API for JSON-mode extraction.
// Every call logs its prompt and raw response under logDir/logs for audit.
type Client struct {
	api    openai.Client
	model  string
	logDir string
}

// NewClient creates a new extraction client. logDir may be empty to disable
// prompt/response logging. Extra request options (base URL overrides and the
// like) are passed through to the underlying API client.
func NewClient(apiKey, model, logDir string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}

	apiOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &Client{
		api:    openai.NewClient(apiOpts...),
		model:  model,
		logDir: logDir,
	}
}

// ChatJSON calls the model in JSON-object mode and returns the raw JSON
// payload. A response that is not valid JSON yields an empty object rather
// than an error, matching the lenient-parse contract extraction callers
// rely on.
func (c *Client) ChatJSON(ctx context.Context, system, prompt, logName string) (json.RawMessage, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLLMFailure, err)
	}

	var raw string
	if len(resp.Choices) > 0 {
		raw = resp.Choices[0].Message.Content
	}

	parsed := json.RawMessage(raw)
	if !json.Valid(parsed) {
		log.Printf("[LLM] %s response was not valid JSON (%d bytes), substituting empty object", logName, len(raw))
		parsed = json.RawMessage("{}")
	}

	c.logExchange(logName, prompt, raw, parsed)
	return parsed, nil
}

// logExchange writes the prompt and raw/parsed responses to the log dir
func (c *Client) logExchange(logName, prompt, raw string, parsed json.RawMessage) {
	if c.logDir == "" {
		return
	}

	dir := filepath.Join(c.logDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[LLM] Could not create log dir: %v", err)
		return
	}

	writeLog := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			log.Printf("[LLM] Could not write %s: %v", name, err)
		}
	}

	writeLog(logName+"_prompt.txt", prompt)
	writeLog(logName+"_response.raw.json", raw)

	pretty, err := json.MarshalIndent(json.RawMessage(parsed), "", "  ")
	if err == nil {
		writeLog(logName+"_response.parsed.json", string(pretty))
	}
}
