// internal/search/classifier/client.go
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	commonerrors "scout-search/internal/common/errors"
)

// Classifier is the narrow interface to the external natural-language
// classifier. Implementations may be a remote LLM call, a local model, or a
// test double; the fallback/caching logic never depends on which.
type Classifier interface {
	Classify(ctx context.Context, freeText string) (*StructuredResult, error)
}

// HTTPClassifier calls the remote structured-output classifier service.
type HTTPClassifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClassifier builds a classifier client with the given endpoint and
// request timeout.
func NewHTTPClassifier(baseURL, apiKey string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Classify performs a single structured-output call. Failures are returned as
// StandardErrors (CLASSIFIER_FAILED, CLASSIFIER_TIMEOUT,
// CLASSIFIER_BAD_RESPONSE); the parse service retries all of them alike.
func (c *HTTPClassifier) Classify(ctx context.Context, freeText string) (*StructuredResult, error) {
	requestBody := map[string]interface{}{
		"query":        freeText,
		"systemPrompt": systemPrompt,
		"schema":       json.RawMessage(responseSchema),
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/ai/classify-query", bytes.NewBuffer(body))
	if err != nil {
		return nil, commonerrors.NewClassifierFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return nil, commonerrors.NewClassifierTimeoutError()
	}
	if err != nil {
		return nil, commonerrors.NewClassifierFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, commonerrors.NewClassifierFailedError(fmt.Errorf("status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, commonerrors.NewClassifierFailedError(fmt.Errorf("read body: %w", err))
	}

	parsed, err := ValidateResponse(raw)
	if err != nil {
		return nil, commonerrors.NewClassifierBadResponseError(err.Error())
	}

	return parsed, nil
}
