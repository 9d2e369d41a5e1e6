package notify

import "context"

// EventType clasifica los eventos del workflow que generan notificación.
type EventType string

const (
	EventProcessStarted    EventType = "process-started"
	EventStageDataRecorded EventType = "stage-data-recorded"
	EventStageApproved     EventType = "stage-approved"
	EventStageRejected     EventType = "stage-rejected"
	EventProcessCompleted  EventType = "process-completed"
)

// Recipient es un rol ("admin", "fundacionAdmin") o un user ID concreto.
type Recipient string

// Event es lo que el workflow entrega al dispatcher tras una transición.
type Event struct {
	Type       EventType
	Recipients []Recipient

	ProcessID string
	StageName string

	// Extra lleva contexto adicional (motivo de rechazo, pet, etc).
	Extra map[string]string
}

// Dispatcher encola una notificación. El workflow lo invoca best-effort:
// un fallo se loguea y nunca revierte la transición ya confirmada.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}
