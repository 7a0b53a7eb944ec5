package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"school-portal-gateway/internal/config"
	"school-portal-gateway/internal/logger"
	"school-portal-gateway/pkg/errors"

	"github.com/rs/zerolog"
)

const (
	CollectionStudents    = "students"
	CollectionTeachers    = "teachers"
	CollectionClasses     = "classes"
	CollectionAttendances = "attendances"
	CollectionExamResults = "exam-results"
)

// Client talks to the headless CMS. It holds no credentials; every call
// takes the caller's token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Backend.Timeout,
		},
		log: logger.Component("backend"),
	}
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// do issues one request. body is JSON-encoded when non-nil; out receives
// the decoded response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query *Query, token string, body, out interface{}) error {
	url := c.baseURL + path
	if query != nil {
		if encoded := query.Encode(); encoded != "" {
			url += "?" + encoded
		}
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("Backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", errors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope errorEnvelope
	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case http.StatusForbidden:
		return errors.ErrForbidden
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", errors.ErrNotFound, resp.Request.URL.Path)
	default:
		return &errors.APIError{Status: resp.StatusCode, Message: message}
	}
}

// list fetches a collection and unwraps {data: [...]}.
func list[T any](ctx context.Context, c *Client, token, collection string, query *Query) ([]T, error) {
	var envelope dataEnvelope
	if err := c.do(ctx, http.MethodGet, "/"+collection, query, token, nil, &envelope); err != nil {
		return nil, err
	}

	items := []T{}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return items, nil
	}
	if err := json.Unmarshal(envelope.Data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return items, nil
}

// Create posts {data: data} to a collection and decodes the created entry into out.
func (c *Client) Create(ctx context.Context, token, collection string, data, out interface{}) error {
	return c.write(ctx, http.MethodPost, "/"+collection, token, data, out)
}

// Update puts {data: data} to a single entry addressed by its document id.
func (c *Client) Update(ctx context.Context, token, collection, documentID string, data, out interface{}) error {
	return c.write(ctx, http.MethodPut, "/"+collection+"/"+documentID, token, data, out)
}

func (c *Client) Delete(ctx context.Context, token, collection, documentID string) error {
	return c.do(ctx, http.MethodDelete, "/"+collection+"/"+documentID, nil, token, nil, nil)
}

func (c *Client) write(ctx context.Context, method, path, token string, data, out interface{}) error {
	var envelope dataEnvelope
	if err := c.do(ctx, method, path, nil, token, map[string]interface{}{"data": data}, &envelope); err != nil {
		return err
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode written entry: %w", err)
	}
	return nil
}
