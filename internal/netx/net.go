// Package netx holds the small HTTP request helpers used to talk to the
// local file endpoints.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// FilePart is one file attached to a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Data     []byte
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// PostMultipart sends fields and file as multipart/form-data. Non-2xx
// statuses are returned in Response, not as an error.
func PostMultipart(ctx context.Context, client *http.Client, url string, fields map[string]string, file FilePart, header http.Header) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(file.Field, file.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(file.Data); err != nil {
		return nil, err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return do(client, req)
}

// DeleteJSON sends a DELETE with v encoded as the JSON body.
func DeleteJSON(ctx context.Context, client *http.Client, url string, v any, header http.Header) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", "application/json")

	return do(client, req)
}

// Head reports whether url answers a HEAD request with a 2xx status.
func Head(ctx context.Context, client *http.Client, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := do(client, req)
	if err != nil {
		return false, err
	}
	return resp.OK(), nil
}

func do(client *http.Client, req *http.Request) (*Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", req.Method, req.URL, err)
	}
	return &Response{StatusCode: resp.StatusCode, Status: resp.Status, Body: b}, nil
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
