package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Cupcake005/sku-app/internal/domain"
	"github.com/Cupcake005/sku-app/internal/logging"
)

// DefaultTable is the products table exposed by the hosted backend
const DefaultTable = "products"

// Config holds connection settings for the hosted backend
type Config struct {
	BaseURL string
	APIKey  string
	Table   string
	Timeout time.Duration
	// RequestsPerSecond caps outgoing requests; zero disables the limit
	RequestsPerSecond float64
}

// Client is a domain.CatalogStore over the PostgREST API of a hosted
// Supabase project. Failed requests are not retried.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	table       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new hosted catalog client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 10) // burst of 10 requests
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		table:       table,
		rateLimiter: limiter,
	}
}

// SetDebug enables logging of every request at info level
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// insertRow is the writable subset of a product; id and created_at are
// left to the table defaults
type insertRow struct {
	SKU         string      `json:"sku"`
	ItemName    string      `json:"item_name"`
	Category    string      `json:"category"`
	BrandName   string      `json:"brand_name"`
	VariantName string      `json:"variant_name"`
	Price       json.Number `json:"price"`
}

func toRow(p *domain.Product) insertRow {
	return insertRow{
		SKU:         p.SKU,
		ItemName:    p.ItemName,
		Category:    p.Category,
		BrandName:   p.BrandName,
		VariantName: p.VariantName,
		Price:       json.Number(p.Price.String()),
	}
}

func toRows(products []domain.Product) []insertRow {
	rows := make([]insertRow, len(products))
	for i := range products {
		rows[i] = toRow(&products[i])
	}
	return rows
}

// Create inserts product and returns the stored representation
func (c *Client) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	var created []domain.Product
	err := c.do(ctx, http.MethodPost, nil, []insertRow{toRow(product)},
		[]string{"return=representation"}, &created)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("%w: insert returned no rows", domain.ErrStoreUnavailable)
	}
	return &created[0], nil
}

// Update replaces every writable field of record id
func (c *Client) Update(ctx context.Context, id string, product *domain.Product) error {
	params := url.Values{}
	params.Set("id", "eq."+id)

	var updated []domain.Product
	if err := c.do(ctx, http.MethodPatch, params, toRow(product),
		[]string{"return=representation"}, &updated); err != nil {
		return err
	}
	if len(updated) == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes record id
func (c *Client) Delete(ctx context.Context, id string) error {
	params := url.Values{}
	params.Set("id", "eq."+id)

	var deleted []domain.Product
	if err := c.do(ctx, http.MethodDelete, params, nil,
		[]string{"return=representation"}, &deleted); err != nil {
		return err
	}
	if len(deleted) == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// FindBySKU returns the newest record with sku
func (c *Client) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("sku", "eq."+sku)
	return c.findOne(ctx, params)
}

// FindByNameVariant returns the newest record with the exact name and variant
func (c *Client) FindByNameVariant(ctx context.Context, name, variant string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("item_name", "eq."+name)
	params.Set("variant_name", "eq."+variant)
	return c.findOne(ctx, params)
}

func (c *Client) findOne(ctx context.Context, params url.Values) (*domain.Product, error) {
	params.Set("select", "*")
	params.Set("order", "created_at.desc")
	params.Set("limit", "1")

	var found []domain.Product
	if err := c.do(ctx, http.MethodGet, params, nil, nil, &found); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return &found[0], nil
}

// ListAll returns every record, newest first
func (c *Client) ListAll(ctx context.Context) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "created_at.desc")

	products := []domain.Product{}
	if err := c.do(ctx, http.MethodGet, params, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ReplaceAll deletes every record, then bulk inserts products. The two
// steps are separate requests; if the insert fails the catalog stays empty.
func (c *Client) ReplaceAll(ctx context.Context, products []domain.Product) error {
	params := url.Values{}
	// PostgREST refuses an unfiltered DELETE
	params.Set("id", "not.is.null")

	if err := c.do(ctx, http.MethodDelete, params, nil, nil, nil); err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, nil, toRows(products), nil, nil); err != nil {
		logging.FromContext(ctx).Error("replace left catalog empty", "error", err)
		return err
	}
	return nil
}

// UpsertBySKU merges rows with a real SKU on the sku column and inserts
// sentinel-SKU rows as new records
func (c *Client) UpsertBySKU(ctx context.Context, products []domain.Product) error {
	var keyed, unkeyed []domain.Product
	for _, p := range products {
		if domain.IsSentinelSKU(p.SKU) {
			unkeyed = append(unkeyed, p)
		} else {
			keyed = append(keyed, p)
		}
	}

	if len(keyed) > 0 {
		params := url.Values{}
		params.Set("on_conflict", "sku")
		if err := c.do(ctx, http.MethodPost, params, toRows(keyed),
			[]string{"resolution=merge-duplicates"}, nil); err != nil {
			return err
		}
	}
	if len(unkeyed) > 0 {
		if err := c.do(ctx, http.MethodPost, nil, toRows(unkeyed), nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// do executes one PostgREST request. body is JSON encoded when non-nil and
// a 2xx response is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method string, params url.Values, body interface{}, prefer []string, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(c.table))
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sku-app/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(prefer) > 0 {
		req.Header.Set("Prefer", strings.Join(prefer, ","))
	}

	logger := logging.FromContext(ctx)
	if c.debug {
		logger.Info("supabase request", "method", method, "url", reqURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", domain.ErrStoreUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("supabase error", "method", method, "status", resp.StatusCode, "body", string(respBody))
		apiErr := parseAPIError(respBody)
		if apiErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrStoreUnavailable, resp.StatusCode, apiErr)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// uniqueViolation is the SQLSTATE PostgREST reports for a unique index hit
const uniqueViolation = "23505"

// apiError is the PostgREST error body
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e apiError) String() string {
	if e.Code != "" {
		return e.Code + " " + e.Message
	}
	return e.Message
}

func parseAPIError(body []byte) apiError {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e
	}
	return apiError{Message: strings.TrimSpace(string(body))}
}
