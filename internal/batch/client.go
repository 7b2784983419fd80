package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/entity"
)

const (
	DefaultAPIURL  = "http://localhost:8000/extract"
	DefaultTimeout = 90 * time.Second
	maxErrorBody   = 512
)

// Client posts documents to the extraction service.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

// Extract uploads data as the multipart field "file" named filename and
// returns the validated result.
func (c *Client) Extract(ctx context.Context, filename string, data []byte) (entity.ExtractionResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	if _, err := fw.Write(data); err != nil {
		return entity.ExtractionResult{}, err
	}
	if err := mw.Close(); err != nil {
		return entity.ExtractionResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.ExtractionResult{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return entity.ExtractionResult{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(bytes.TrimSpace(payload)), maxErrorBody))
	}

	res, err := decodeResponse(payload)
	if err != nil {
		return entity.ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrUnexpectedResponse, err)
	}
	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
