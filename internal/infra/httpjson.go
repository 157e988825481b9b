package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxErrorBody = 512

// NewHTTPClient returns the client the API adapters share settings with.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// GetJSON fetches url and decodes the JSON body into out, retrying
// transport failures and retryable statuses.
func GetJSON(ctx context.Context, client *http.Client, api, url string, out any) error {
	return WithRetry(ctx, DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return &StatusError{API: api, StatusCode: resp.StatusCode, Body: string(body)}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s response: %w", api, err)
		}
		return nil
	})
}
