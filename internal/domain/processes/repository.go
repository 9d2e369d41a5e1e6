package processes

import "context"

// Repository persiste procesos de adopción. Save hace compare-and-swap
// sobre Version: si el documento cambió entre lectura y escritura
// devuelve ErrConflict (evita doble avance de etapa concurrente).
type Repository interface {
	Create(ctx context.Context, p AdoptionProcess) error

	// Save persiste p si p.Version coincide con lo almacenado y
	// devuelve la copia confirmada con Version incrementada.
	Save(ctx context.Context, p AdoptionProcess) (AdoptionProcess, error)

	GetByID(ctx context.Context, id string) (AdoptionProcess, error)
	GetBySourceRequest(ctx context.Context, sourceRequestID string) (AdoptionProcess, error)
	List(ctx context.Context) ([]AdoptionProcess, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]AdoptionProcess, error)
}
