// Package local trae implementaciones de los ports para correr sin el
// API central (modo dev): las notificaciones y el catálogo solo se
// loguean, nada sale del proceso.
package local

import (
	"context"

	"adoptme-adoption-process/internal/platform/logger"
	"adoptme-adoption-process/internal/ports/notify"
)

type Dispatcher struct {
	log logger.Logger
}

func NewDispatcher(log logger.Logger) *Dispatcher {
	return &Dispatcher{log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev notify.Event) error {
	recipients := make([]string, 0, len(ev.Recipients))
	for _, r := range ev.Recipients {
		recipients = append(recipients, string(r))
	}

	d.log.Info("notification (local)", map[string]any{
		"type":       string(ev.Type),
		"recipients": recipients,
		"process_id": ev.ProcessID,
		"stage":      ev.StageName,
	})
	return nil
}

type Catalog struct {
	log logger.Logger
}

func NewCatalog(log logger.Logger) *Catalog {
	return &Catalog{log: log}
}

func (c *Catalog) MarkUnavailable(ctx context.Context, petID string) error {
	c.log.Info("pet marked unavailable (local)", map[string]any{
		"pet_id": petID,
	})
	return nil
}
