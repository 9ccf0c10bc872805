package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tenderdesk/internal/app/dto"
)

// PresignUpload asks the server for a short-lived PUT URL for a tender file.
func (c *Client) PresignUpload(ctx context.Context, filename, contentType, tenderID string) (dto.PresignResponse, error) {
	query := url.Values{"filename": {filename}}
	if contentType != "" {
		query.Set("contentType", contentType)
	}
	if tenderID != "" {
		query.Set("tenderId", tenderID)
	}
	var out dto.PresignResponse
	if err := c.do(ctx, http.MethodGet, "/uploads/s3-presign", query, nil, &out); err != nil {
		return dto.PresignResponse{}, err
	}
	return out, nil
}

// PresignDownload asks the server for a short-lived GET URL for a stored key.
func (c *Client) PresignDownload(ctx context.Context, key string) (string, error) {
	query := url.Values{"key": {key}}
	var out dto.PresignGetResponse
	if err := c.do(ctx, http.MethodGet, "/uploads/s3-presign-get", query, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Upload PUTs the content to a presigned URL. The URL targets object storage
// directly, so this bypasses the API base URL and bearer token.
func (c *Client) Upload(ctx context.Context, uploadURL string, content io.Reader, size int64, contentType string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, content)
	if err != nil {
		return err
	}
	if size >= 0 {
		request.ContentLength = size
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
