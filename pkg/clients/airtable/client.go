package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// LeadKeyField is the column used to find existing leads
const LeadKeyField = "lead_key"

// Client defines the interface for interacting with Airtable API
type Client interface {
	FindRecord(ctx context.Context, table, leadKey string) (id string, found bool, err error)
	CreateRecord(ctx context.Context, table string, fields map[string]any) (string, error)
}

// APIError is a non-success response from Airtable
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable API %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether repeating the call may succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type clientImpl struct {
	apiKey  string
	baseID  string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*clientImpl)

func WithBaseURL(u string) Option { return func(c *clientImpl) { c.baseURL = u } }

func WithHTTPClient(h *http.Client) Option { return func(c *clientImpl) { c.http = h } }

func WithLogger(l *zap.Logger) Option { return func(c *clientImpl) { c.logger = l } }

// NewClient creates a new Airtable client
func NewClient(apiKey, baseID string, opts ...Option) Client {
	c := &clientImpl{
		apiKey:  apiKey,
		baseID:  baseID,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *clientImpl) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
}

func (c *clientImpl) FindRecord(ctx context.Context, table, leadKey string) (string, bool, error) {
	q := url.Values{}
	q.Set("filterByFormula", fmt.Sprintf("{%s}=%q", LeadKeyField, leadKey))
	q.Set("maxRecords", "1")

	var response struct {
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+q.Encode(), nil, &response); err != nil {
		return "", false, fmt.Errorf("error checking Airtable: %w", err)
	}

	found := len(response.Records) > 0
	c.logger.Debug("airtable lead lookup",
		zap.String("table", table),
		zap.String("lead_key", leadKey),
		zap.Bool("found", found))
	if !found {
		return "", false, nil
	}
	return response.Records[0].ID, true, nil
}

func (c *clientImpl) CreateRecord(ctx context.Context, table string, fields map[string]any) (string, error) {
	payload := map[string]any{
		"records":  []map[string]any{{"fields": fields}},
		"typecast": true,
	}

	var response struct {
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), payload, &response); err != nil {
		return "", fmt.Errorf("error creating Airtable record: %w", err)
	}
	if len(response.Records) == 0 {
		return "", fmt.Errorf("airtable returned no record")
	}

	id := response.Records[0].ID
	c.logger.Info("created airtable record", zap.String("table", table), zap.String("record_id", id))
	return id, nil
}

func (c *clientImpl) do(ctx context.Context, method, u string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("error creating payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
