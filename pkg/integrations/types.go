// Package integrations holds clients for the metered external APIs.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// Integration is an external API whose calls are counted by the usage ledger.
type Integration interface {
	// Name returns the integration identifier (e.g., "google-calendar").
	Name() string

	// APIType returns the usage category calls are metered under.
	APIType() model.APIType
}

const defaultTimeout = 10 * time.Second

func newHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}

// doJSON sends body (if any) as JSON and decodes a 2xx response into out.
// Transport failures and non-2xx statuses are model.ErrUpstream.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return model.Errorf(model.ErrUpstream, "%s %s: %v", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Errorf(model.ErrUpstream, "%s %s returned status %d: %s",
			method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.Errorf(model.ErrUpstream, "decode %s response: %v", req.URL.Path, err)
	}
	return nil
}
