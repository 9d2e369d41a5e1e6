// Package coreapi implementa los ports contra el API central de
// ADOPTME (auth, notificaciones y catálogo de mascotas viven allá).
package coreapi

import (
	"errors"
	"strings"
	"time"

	"adoptme-adoption-process/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("coreapi client not configured")
	ErrUnauthorized  = errors.New("coreapi unauthorized")
	ErrUpstream      = errors.New("coreapi upstream error")
)

// Config del cliente. BaseURL y APIKey normalmente vienen de env.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Vacío => "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

func (c *Client) headers(extra map[string]string) map[string]string {
	out := map[string]string{
		c.apiKeyHeader: c.apiKey,
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
