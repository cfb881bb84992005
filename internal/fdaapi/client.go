// Package fdaapi provides a client for the openFDA device API, the external
// regulatory data source used for device classification lookups.
package fdaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const classificationPath = "/device/classification.json"

// Client represents a client for the openFDA device API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new openFDA client. An empty apiKey is valid; openFDA
// serves unauthenticated requests at a lower rate limit.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether the client has an endpoint to talk to.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// Classification is one openFDA device classification record.
type Classification struct {
	DeviceName       string `json:"device_name"`
	DeviceClass      string `json:"device_class"`
	RegulationNumber string `json:"regulation_number"`
	ProductCode      string `json:"product_code"`
	MedicalSpecialty string `json:"medical_specialty_description"`
}

type classificationResponse struct {
	Results []Classification `json:"results"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SearchClassifications queries the device classification endpoint. An
// openFDA 404 means the search matched nothing and is returned as an empty
// slice, not an error.
func (c *Client) SearchClassifications(ctx context.Context, search string, limit int) ([]Classification, error) {
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	q.Set("limit", strconv.Itoa(limit))

	resp, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded classificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode openFDA response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return nil, fmt.Errorf("openFDA request failed with status %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return nil, fmt.Errorf("openFDA request failed with status %d", resp.StatusCode)
	}

	return decoded.Results, nil
}

// Ping issues the cheapest possible classification query and reports whether
// the API answered with a success-class status. Used by the health probe.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("limit", "1")

	resp, err := c.get(ctx, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("openFDA ping returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, q url.Values) (*http.Response, error) {
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	reqURL := c.baseURL + classificationPath + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach openFDA: %w", err)
	}
	return resp, nil
}
