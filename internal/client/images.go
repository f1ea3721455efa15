package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/stockimage/internal/gallery"
)

var (
	// ErrTitleMismatch means the number of files and non-empty titles differ.
	ErrTitleMismatch = errors.New("each image needs a title")
	ErrNoFiles       = errors.New("no images selected")
)

// File is one image to upload.
type File struct {
	Name string
	Data []byte
}

// ListImages returns the signed-in user's images sorted by order.
func (c *Client) ListImages(ctx context.Context) ([]gallery.Record, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var records []gallery.Record
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/images/%d", c.session.UserID), nil, &records); err != nil {
		return nil, err
	}
	return gallery.SortByOrder(records), nil
}

// Upload sends a batch of images; titles[i] names files[i]. A batch whose
// file count differs from the count of non-empty titles is rejected before
// anything is sent.
func (c *Client) Upload(ctx context.Context, titles []string, files []File) ([]gallery.Record, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	nonEmpty := 0
	for _, title := range titles {
		if strings.TrimSpace(title) != "" {
			nonEmpty++
		}
	}
	if nonEmpty != len(files) || len(titles) != len(files) {
		return nil, ErrTitleMismatch
	}
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, title := range titles {
		if err := w.WriteField("title", strings.TrimSpace(title)); err != nil {
			return nil, err
		}
	}
	for _, file := range files {
		part, err := w.CreateFormFile("images", file.Name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/images/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var records []gallery.Record
	if err := c.send(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EditTitle changes the title of one image.
func (c *Client) EditTitle(ctx context.Context, id uint, title string) (gallery.Record, error) {
	var record gallery.Record
	if err := c.requireSession(); err != nil {
		return record, err
	}
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/images/edit/%d", id), map[string]string{"title": title}, &record)
	return record, err
}

// Replace swaps the file of one image and returns its new URL.
func (c *Client) Replace(ctx context.Context, id uint, file File) (string, error) {
	if err := c.requireSession(); err != nil {
		return "", err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", file.Name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/api/images/replace/%d", c.baseURL, id), &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.send(req, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

// Delete removes one image.
func (c *Client) Delete(ctx context.Context, id uint) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/images/%d", id), nil, nil)
}

// SaveOrder sends the whole order in one request.
func (c *Client) SaveOrder(ctx context.Context, entries []gallery.OrderEntry) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPut, "/api/images/rearrange", map[string]interface{}{"images": entries}, nil)
}

var (
	_ gallery.Fetcher    = (*Client)(nil)
	_ gallery.OrderSaver = (*Client)(nil)
)
