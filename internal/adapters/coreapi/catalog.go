package coreapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// CatalogClient implementa petcatalog.Catalog: al aprobar entrega la
// mascota deja de estar disponible para nuevas solicitudes.
type CatalogClient struct {
	client *Client
}

func NewCatalogClient(client *Client) *CatalogClient {
	return &CatalogClient{client: client}
}

func (c *CatalogClient) MarkUnavailable(ctx context.Context, petID string) error {
	if c == nil || c.client == nil || !c.client.IsConfigured() {
		return ErrNotConfigured
	}

	petID = strings.TrimSpace(petID)
	if petID == "" {
		return errors.New("pet id required")
	}

	body := map[string]bool{"disponible": false}
	path := "/api/mascotas/" + petID + "/disponibilidad"

	if err := c.client.http.DoJSON(ctx, http.MethodPatch, path, c.client.headers(nil), body, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
