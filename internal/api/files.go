package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/atlasprime/atlas/internal/models"
)

// UploadFile streams a file to POST /files/upload as multipart form data.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (*models.FileInfo, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, &Error{Code: CodeUnknown, Message: fmt.Sprintf("building upload: %v", err)}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &Error{Code: CodeUnknown, Message: fmt.Sprintf("reading %s: %v", filename, err)}
	}
	if err := writer.Close(); err != nil {
		return nil, &Error{Code: CodeUnknown, Message: fmt.Sprintf("building upload: %v", err)}
	}

	var info models.FileInfo
	if err := c.DoMultipart(ctx, "/files/upload", writer.FormDataContentType(), &buf, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ProcessLink asks the backend to ingest the content behind a URL.
func (c *Client) ProcessLink(ctx context.Context, url string, maxContentLength int) (*models.FileInfo, error) {
	body := map[string]interface{}{"url": url}
	if maxContentLength > 0 {
		body["max_content_length"] = maxContentLength
	}

	var info models.FileInfo
	if err := c.Do(ctx, http.MethodPost, "/files/process-link", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListFiles fetches the caller's ingested files.
func (c *Client) ListFiles(ctx context.Context, limit, skip int) ([]models.FileInfo, error) {
	query := map[string]string{}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}
	if skip > 0 {
		query["skip"] = strconv.Itoa(skip)
	}

	var files []models.FileInfo
	if err := c.Do(ctx, http.MethodGet, queryPath("/files/list", query), nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}
