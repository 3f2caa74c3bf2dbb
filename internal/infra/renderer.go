package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/dto"
)

// RendererClient posts finalized receipts to the external document renderer,
// which owns layout and printing. The payload is dto.Receipt as JSON.
type RendererClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRendererClient(baseURL string) *RendererClient {
	return &RendererClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Render sends one receipt. Any non-2xx answer is an error so the worker can
// retry; the renderer is expected to be idempotent on sale_id.
func (c *RendererClient) Render(ctx context.Context, r dto.Receipt) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("renderer: marshal receipt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/receipts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("renderer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", r.SaleID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("renderer: unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("renderer: returned %d", resp.StatusCode)
	}
	return nil
}
