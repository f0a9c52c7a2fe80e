// Package uploadclient submits listings to the marketplace backend the way an
// automated seller integration would: an image arrives base64-encoded and is
// posted as a multipart form to /create_listing.
package uploadclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

const (
	imageFilename    = "photo.jpg"
	imageContentType = "image/jpeg"
	maxErrorBody     = 4 << 10
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("create listing: unexpected status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateListing decodes imageBase64 and posts it with the listing fields.
// It returns the decoded JSON body of a 2xx response.
func (c *Client) CreateListing(ctx context.Context, title, description string, price float64, sellerID int64, imageBase64 string) (map[string]any, error) {
	image, err := base64.StdEncoding.DecodeString(strings.TrimSpace(imageBase64))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	body, contentType, err := buildForm(title, description, price, sellerID, image)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/create_listing", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("create listing: decode response: %w", err)
	}
	return out, nil
}

func buildForm(title, description string, price float64, sellerID int64, image []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", title},
		{"description", description},
		{"price", strconv.FormatFloat(price, 'f', -1, 64)},
		{"seller_id", strconv.FormatInt(sellerID, 10)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, imageFilename))
	h.Set("Content-Type", imageContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
