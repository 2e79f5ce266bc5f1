package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// OllamaStrategy extracts entities through a locally hosted Ollama
// inference server.
type OllamaStrategy struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *slog.Logger
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// NewOllamaStrategy creates an Ollama-backed extraction strategy.
func NewOllamaStrategy(baseURL, model string, temperature float64, maxTokens int, timeout time.Duration, logger *slog.Logger) *OllamaStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaStrategy{
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Name identifies the strategy in logs.
func (*OllamaStrategy) Name() string { return "ollama" }

// Extract sends the JSON-only extraction prompt to the generate endpoint
// and parses the reply.
func (o *OllamaStrategy) Extract(ctx context.Context, subject, text string) (Result, error) {
	reqBody := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: buildPrompt(subject, text),
		Stream: false,
		Options: map[string]any{
			"temperature": o.temperature,
			"num_predict": o.maxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	url := o.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API returned %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	res, err := parseResponse(result.Response)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("ollama extraction", "model", o.model, "subject", subject, "values", res.Total())
	return res, nil
}
