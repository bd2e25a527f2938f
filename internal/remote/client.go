// Package remote speaks to the out-of-scope backend: a document store with
// one row per user ({items, updated_at}) and a token-refresh auth endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUnauthorized signals an expired or rejected credential; the syncer
// responds with exactly one refresh-and-retry.
var ErrUnauthorized = errors.New("unauthorized")

// Document is the whole-collection row exchanged with the store. Items stay
// raw so pulled copies are re-validated before use.
type Document struct {
	Items     []json.RawMessage `json:"items"`
	UpdatedAt int64             `json:"updated_at"`
}

// Tokens is the credential set returned by the auth endpoint.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type Client struct {
	BaseURL      string
	AccessToken  string
	RefreshToken string

	// HTTPClient defaults to a client with a 15s timeout; network calls fail
	// fast rather than hanging a sync.
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (c *Client) docURL(userID string) string {
	return fmt.Sprintf("%s/store/%s", c.BaseURL, url.PathEscape(userID))
}

// Fetch reads the latest row for userID. A missing row returns (nil, nil).
func (c *Client) Fetch(ctx context.Context, userID string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(userID), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, statusError(resp)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode remote document: %w", err)
	}
	return &doc, nil
}

// Upsert writes the row for userID, replacing any previous version.
func (c *Client) Upsert(ctx context.Context, userID string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.docURL(userID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return statusError(resp)
	}
}

// Refresh exchanges the refresh token for a fresh credential pair and installs
// it on the client.
func (c *Client) Refresh(ctx context.Context) (Tokens, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": c.RefreshToken})
	if err != nil {
		return Tokens{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return Tokens{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Tokens{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Tokens{}, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return Tokens{}, statusError(resp)
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return Tokens{}, fmt.Errorf("decode tokens: %w", err)
	}
	c.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.RefreshToken = tokens.RefreshToken
	}
	return tokens, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}
}

func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Errorf("remote: %s: %s", resp.Status, bytes.TrimSpace(snippet))
}
