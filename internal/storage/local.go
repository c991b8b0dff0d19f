package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/models"
	"github.com/korssa/gong34/internal/netx"
)

const (
	UploadPath     = "/api/upload"
	DeleteFilePath = "/api/delete-file"

	// UploadKeyHeader carries the shared key of the local file endpoints.
	UploadKeyHeader = "X-Upload-Key"
)

// UploadResult is the body of the local upload endpoint.
type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DeleteRequest is the body of the local delete endpoint.
type DeleteRequest struct {
	URL string `json:"url"`
}

// LocalBackend talks to the local file endpoints over HTTP.
type LocalBackend struct {
	endpoint  string
	uploadKey string
	client    *http.Client
	logger    logging.Logger
}

func NewLocalBackend(endpoint, uploadKey string, client *http.Client, logger logging.Logger) *LocalBackend {
	return &LocalBackend{
		endpoint:  strings.TrimRight(endpoint, "/"),
		uploadKey: uploadKey,
		client:    client,
		logger:    logger,
	}
}

func (l *LocalBackend) header() http.Header {
	h := http.Header{}
	if l.uploadKey != "" {
		h.Set(UploadKeyHeader, l.uploadKey)
	}
	return h
}

func (l *LocalBackend) Upload(ctx context.Context, asset models.Asset, prefix string) (string, error) {
	resp, err := netx.PostMultipart(ctx, l.client, l.endpoint+UploadPath,
		map[string]string{"prefix": prefix},
		netx.FilePart{Field: "file", Filename: asset.Filename, Data: asset.Data},
		l.header())
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUpload, err)
	}

	var result UploadResult
	decodeErr := json.Unmarshal(resp.Body, &result)

	if !resp.OK() {
		if decodeErr == nil && result.Error != "" {
			return "", fmt.Errorf("%w: %s: %s", common.ErrUpload, resp.Status, result.Error)
		}
		return "", fmt.Errorf("%w: %s", common.ErrUpload, resp.Status)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: malformed response: %v", common.ErrUpload, decodeErr)
	}
	if !result.Success || result.URL == "" {
		msg := result.Error
		if msg == "" {
			msg = "local upload failed"
		}
		return "", fmt.Errorf("%w: %s", common.ErrUpload, msg)
	}
	return result.URL, nil
}

func (l *LocalBackend) Delete(ctx context.Context, url string) bool {
	resp, err := netx.DeleteJSON(ctx, l.client, l.endpoint+DeleteFilePath, DeleteRequest{URL: url}, l.header())
	if err != nil {
		l.logger.Warn(ctx, "local delete failed", "url", url, "error", err)
		return false
	}
	if !resp.OK() {
		l.logger.Warn(ctx, "local delete rejected", "url", url, "status", resp.Status)
		return false
	}
	return true
}

func (l *LocalBackend) Exists(ctx context.Context, url string) bool {
	ok, err := netx.Head(ctx, l.client, l.endpoint+url)
	if err != nil {
		l.logger.Debug(ctx, "local probe failed", "url", url, "error", err)
	}
	return ok
}
