// ABOUTME: HTTP client for the remote dragon collection resource
// ABOUTME: Maps list/get/create/update/delete onto one REST collection URL

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/markalston/dragon-catalog/internal/models"
)

// DefaultTimeout is the transport timeout applied when none is configured
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of a failed response body is kept
const maxErrorBody = 64 << 10

// Client is the record store client for one collection resource
type Client struct {
	baseURL    string
	httpClient *http.Client
	locale     language.Tag
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the transport timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLocale sets the collation locale used to order ListAll results
func WithLocale(tag language.Tag) Option {
	return func(c *Client) {
		c.locale = tag
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new store client for the collection at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		locale:    language.English,
		userAgent: "dragon-catalog",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the collection URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListAll fetches the whole collection ordered by name (locale-aware, ascending)
func (c *Client) ListAll(ctx context.Context) ([]models.Record, error) {
	var records []models.Record
	if err := c.do(ctx, "list records", http.MethodGet, "", nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Record{}
	}
	c.sortByName(records)
	return records, nil
}

// Get fetches one record by id
func (c *Client) Get(ctx context.Context, id string) (*models.Record, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var record models.Record
	if err := c.do(ctx, "get record", http.MethodGet, id, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create sends name and type; the store assigns id and createdAt
func (c *Client) Create(ctx context.Context, input models.RecordInput) (*models.Record, error) {
	var record models.Record
	if err := c.do(ctx, "create record", http.MethodPost, "", input, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update replaces the fields present in patch and returns the stored record
func (c *Client) Update(ctx context.Context, id string, patch models.RecordPatch) (*models.Record, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var record models.Record
	if err := c.do(ctx, "update record", http.MethodPut, id, patch, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a record. Deleting an unknown id fails with ErrNotFound.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return c.do(ctx, "delete record", http.MethodDelete, id, nil, nil)
}

// sortByName orders records by name using the configured collator.
// A collator is not safe for concurrent use, so one is built per call.
func (c *Client) sortByName(records []models.Record) {
	col := collate.New(c.locale)
	sort.SliceStable(records, func(i, j int) bool {
		return col.CompareString(records[i].Name, records[j].Name) < 0
	})
}

// requireID keeps member operations off the collection URL
func requireID(id string) error {
	if id == "" {
		return &models.ValidationError{Field: "id", Reason: "cannot be empty"}
	}
	return nil
}

// resourceURL returns the collection URL, or the member URL when id is set
func (c *Client) resourceURL(id string) string {
	if id == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + url.PathEscape(id)
}

// do issues one request and decodes a 2xx JSON body into out (when non-nil).
// A 404 against a member URL becomes NotFoundError; everything else that
// fails becomes TransportError.
func (c *Client) do(ctx context.Context, op, method, id string, body, out any) error {
	target := c.resourceURL(id)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &TransportError{Op: op, Method: method, URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, op, req, err)
	}
	defer resp.Body.Close()

	slog.Debug("Store request completed",
		"op", op,
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(op, id, req, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{
			Op:         op,
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("invalid response from store: %w", err),
		}
	}
	return nil
}

// handleRequestError converts context errors to readable transport errors
func (c *Client) handleRequestError(ctx context.Context, op string, req *http.Request, err error) error {
	te := &TransportError{Op: op, Method: req.Method, URL: req.URL.String()}
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		te.Err = fmt.Errorf("request canceled: %w", ctx.Err())
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		te.Err = fmt.Errorf("request timed out: %w", ctx.Err())
	default:
		te.Err = fmt.Errorf("cannot connect to store at %s: %w", c.baseURL, err)
	}
	return te
}

// handleErrorResponse classifies a non-2xx response
func (c *Client) handleErrorResponse(op, id string, req *http.Request, resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound && id != "" {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &NotFoundError{ID: id}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &TransportError{
		Op:         op,
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}
