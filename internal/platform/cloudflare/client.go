// Package cloudflare is a small Cloudflare API client used to verify the
// managed zone and to remove the DNS records external-dns left behind.
package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
)

// DefaultBaseURL is the Cloudflare v4 API endpoint.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// Client talks to the Cloudflare API with a scoped API token.
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	log        logr.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Record is a DNS record of a zone.
type Record struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Errors     []apiError      `json:"errors"`
	Result     json.RawMessage `json:"result"`
	ResultInfo struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"result_info"`
}

// NewClient creates a client for apiToken.
func NewClient(apiToken string, log logr.Logger, opts ...Option) *Client {
	c := &Client{
		apiToken:   apiToken,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		log:        log.WithName("cloudflare"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ZoneID returns the id of the zone named domain.
func (c *Client) ZoneID(ctx context.Context, domain string) (string, error) {
	var zones []struct {
		ID string `json:"id"`
	}
	if _, err := c.get(ctx, "/zones?name="+url.QueryEscape(domain), &zones); err != nil {
		return "", fmt.Errorf("failed to look up zone %s: %w", domain, err)
	}
	if len(zones) == 0 {
		return "", fmt.Errorf("no zone found for domain %s", domain)
	}
	return zones[0].ID, nil
}

// Records returns every DNS record of the zone.
func (c *Client) Records(ctx context.Context, zoneID string) ([]Record, error) {
	var all []Record
	for page := 1; ; page++ {
		var records []Record
		env, err := c.get(ctx, fmt.Sprintf("/zones/%s/dns_records?per_page=100&page=%d", zoneID, page), &records)
		if err != nil {
			return nil, fmt.Errorf("failed to list dns records (page %d): %w", page, err)
		}
		all = append(all, records...)
		if page >= env.ResultInfo.TotalPages {
			return all, nil
		}
	}
}

// DeleteRecord deletes one record.
func (c *Client) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	if _, err := c.call(ctx, http.MethodDelete, fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID), nil); err != nil {
		return fmt.Errorf("failed to delete dns record %s: %w", recordID, err)
	}
	return nil
}

// OwnedRecords selects the records external-dns created for ownerID: the
// TXT registry records carrying the owner marker and the A, AAAA and CNAME
// records they claim.
func OwnedRecords(records []Record, ownerID string) []Record {
	marker := "external-dns/owner=" + ownerID

	owned := make(map[string]bool)
	var selected []Record
	for _, r := range records {
		if r.Type != "TXT" || !strings.Contains(r.Content, marker) {
			continue
		}
		selected = append(selected, r)

		// Registry records are named "<type>-<name>" or carry the plain name.
		name := r.Name
		for _, prefix := range []string{"a-", "aaaa-", "cname-"} {
			if strings.HasPrefix(name, prefix) {
				name = strings.TrimPrefix(name, prefix)
				break
			}
		}
		owned[name] = true
	}

	for _, r := range records {
		switch r.Type {
		case "A", "AAAA", "CNAME":
			if owned[r.Name] {
				selected = append(selected, r)
			}
		}
	}
	return selected
}

// CleanupOwnedRecords deletes the records external-dns created for ownerID in
// the zone of domain and returns how many were deleted.
func (c *Client) CleanupOwnedRecords(ctx context.Context, domain, ownerID string) (int, error) {
	zoneID, err := c.ZoneID(ctx, domain)
	if err != nil {
		return 0, err
	}
	records, err := c.Records(ctx, zoneID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, r := range OwnedRecords(records, ownerID) {
		if err := c.DeleteRecord(ctx, zoneID, r.ID); err != nil {
			return deleted, fmt.Errorf("record %s %s: %w", r.Type, r.Name, err)
		}
		c.log.V(1).Info("deleted dns record", "type", r.Type, "name", r.Name)
		deleted++
	}
	return deleted, nil
}

func (c *Client) get(ctx context.Context, path string, result any) (*envelope, error) {
	env, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	return env, nil
}

func (c *Client) call(ctx context.Context, method, path string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return nil, apiFailure(resp.StatusCode, env.Errors)
	}
	return &env, nil
}

func apiFailure(status int, errs []apiError) error {
	if len(errs) == 0 {
		return fmt.Errorf("API error (status %d)", status)
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%d: %s", e.Code, e.Message))
	}
	return fmt.Errorf("API error (status %d): %s", status, strings.Join(msgs, "; "))
}
