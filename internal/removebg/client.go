// Package removebg talks to the remove.bg background removal API.
package removebg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://api.remove.bg/v1.0/removebg"
	DefaultSize     = "regular"
	DefaultTimeout  = 60 * time.Second

	// maxErrorBody caps how much of a failed response ends up in the error.
	maxErrorBody = 512
)

var ErrNoAPIKey = errors.New("removebg: no API key configured")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("removebg: status %d: %s", e.Code, e.Body)
}

// Client sends images to the API. The zero value is not usable; use New.
type Client struct {
	Endpoint string
	APIKey   string
	Size     string
	HTTP     *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		Endpoint: DefaultEndpoint,
		APIKey:   apiKey,
		Size:     DefaultSize,
		HTTP:     &http.Client{Timeout: DefaultTimeout},
	}
}

// Remove uploads the named image and returns the raw image bytes the API
// sends back.
func (c *Client) Remove(ctx context.Context, filename string, image io.Reader) ([]byte, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	body, contentType, err := c.form(filename, image)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("removebg: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Api-Key", c.APIKey)

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("removebg: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("removebg: read response: %w", err)
	}
	log.Printf("[REMOVEBG] %s: %d bytes back in %s", filename, len(data), time.Since(start).Round(time.Millisecond))
	return data, nil
}

func (c *Client) form(filename string, image io.Reader) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if filename == "" {
		filename = "image"
	}
	part, err := mw.CreateFormFile("image_file", filepath.Base(filename))
	if err != nil {
		return nil, "", fmt.Errorf("removebg: create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, "", fmt.Errorf("removebg: copy image: %w", err)
	}

	size := c.Size
	if size == "" {
		size = DefaultSize
	}
	if err := mw.WriteField("size", size); err != nil {
		return nil, "", fmt.Errorf("removebg: write size: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("removebg: close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
