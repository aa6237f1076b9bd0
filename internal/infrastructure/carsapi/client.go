package carsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carcompare/backend/internal/domain"
)

// Header names required by the RapidAPI gateway in front of the catalog
const (
	HeaderAPIKey = "X-RapidAPI-Key"
	HeaderHost   = "X-RapidAPI-Host"
)

const maxErrorBody = 512

// Client handles communication with the cars catalog API
type Client struct {
	httpClient *http.Client
	apiKey     string
	host       string
	baseURL    string
	debug      bool
}

// NewClient creates a new cars catalog client.
// apiKey and host are sent on every request and never change afterwards.
func NewClient(apiKey, baseURL, host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:  apiKey,
		host:    host,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SearchByModel returns up to limit vehicles whose model contains the given substring
func (c *Client) SearchByModel(ctx context.Context, model string, limit int) ([]domain.VehicleRecord, error) {
	params := url.Values{}
	params.Set("model", model)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var cars []Car
	if err := c.get(ctx, "/v1/cars", params, &cars); err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[CARSAPI] SearchByModel %q (limit %d) -> %d records", model, limit, len(cars))
	}
	return MapToVehicleRecords(cars), nil
}

// Lookup resolves a vehicle name to catalog records. No limit is sent;
// callers take the first record as the authoritative match.
func (c *Client) Lookup(ctx context.Context, query domain.LookupQuery) ([]domain.VehicleRecord, error) {
	params := url.Values{}
	params.Set("model", query.Model)
	if query.Make != "" {
		params.Set("make", query.Make)
	}

	var cars []Car
	if err := c.get(ctx, "/v1/cars", params, &cars); err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[CARSAPI] Lookup %s -> %d records", query, len(cars))
	}
	return MapToVehicleRecords(cars), nil
}

// ListMakes returns every make known to the catalog.
// Restricted API plans reject this endpoint; callers are expected to fail soft.
func (c *Client) ListMakes(ctx context.Context) ([]string, error) {
	var makes []string
	if err := c.get(ctx, "/v1/carmakes", nil, &makes); err != nil {
		return nil, err
	}
	return makes, nil
}

// ListModels returns the models offered for one make
func (c *Client) ListModels(ctx context.Context, makeName string) ([]string, error) {
	params := url.Values{}
	params.Set("make", makeName)

	var models []string
	if err := c.get(ctx, "/v1/carmodels", params, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// get executes a GET request with the gateway headers and decodes a JSON body into out
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", domain.ErrCatalogAPIFailure, err)
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderHost, c.host)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CarCompare/1.0")

	if c.debug {
		log.Printf("[CARSAPI] GET %s", reqURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Printf("[CARSAPI] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return fmt.Errorf("%w: status %d", domain.ErrCatalogAPIFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	return nil
}
