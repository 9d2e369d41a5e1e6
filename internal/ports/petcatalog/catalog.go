package petcatalog

import "context"

// Catalog es el canal lateral hacia el catálogo de mascotas del API
// central. Solo se invoca al aprobar entrega, best-effort.
type Catalog interface {
	MarkUnavailable(ctx context.Context, petID string) error
}
