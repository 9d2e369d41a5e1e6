package processes

import "errors"

// Taxonomía de errores del workflow. El handler los traduce a códigos
// estables para que el cliente distinga "etapa equivocada" de
// "faltan datos" de "no permitido".
var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound: el proceso no existe.
	ErrNotFound = errors.New("process not found")

	// ErrInvalidStage: el nombre de etapa no es una de las cinco fijas.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrOutOfOrder: la etapa no es la etapa actual del proceso.
	ErrOutOfOrder = errors.New("stage out of order")

	// ErrStageNotReady: faltan campos requeridos para aprobar la etapa.
	ErrStageNotReady = errors.New("stage not ready")

	// ErrMissingReason: rechazo sin motivo.
	ErrMissingReason = errors.New("rejection reason required")

	// ErrForbidden: el rol no tiene capacidad para la operación.
	ErrForbidden = errors.New("forbidden")

	// ErrProcessTerminal: el proceso ya finalizó o fue rechazado.
	ErrProcessTerminal = errors.New("process is terminal")

	// ErrConflict: la persistencia detectó una escritura concurrente.
	ErrConflict = errors.New("concurrent update conflict")
)
