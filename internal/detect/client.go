package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/pkg/errors"

	"slot-viewer/internal/slots"
)

// Path is the detection route appended to the configured base URL.
const Path = "/api/detect_slots"

// FileField is the multipart field carrying the image bytes.
const FileField = "file"

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("detect: HTTP %d", e.Code)
	}
	return fmt.Sprintf("detect: HTTP %d: %s", e.Code, e.Body)
}

// Client posts photos to a slot detection service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for the service at baseURL (e.g. "http://192.168.0.10:8000").
// timeout <= 0 means no client-side timeout; the caller's context still applies.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := &http.Client{}
	if timeout > 0 {
		c.Timeout = timeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  c,
	}
}

// DetectSlots sends the image as multipart form field "file" and returns the slots from the JSON reply.
// No retries: any transport, status, or decoding failure is returned to the caller.
func (c *Client) DetectSlots(ctx context.Context, name, mimeType string, data []byte) ([]slots.Slot, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(FileField), escapeQuotes(name)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, errors.Wrap(err, "detect: create form file")
	}
	if _, err := part.Write(data); err != nil {
		return nil, errors.Wrap(err, "detect: write form file")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "detect: close form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Path, body)
	if err != nil {
		return nil, errors.Wrap(err, "detect: create request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "detect: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out slots.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "detect: decode response")
	}
	return out.Slots, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// escapeQuotes escapes a quoted-string value the way mime/multipart does for form files.
func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Health calls GET <base>/health. Used at startup to warn early when the service is down.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "detect: create request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "detect: health")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
