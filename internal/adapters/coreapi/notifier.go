package coreapi

import (
	"context"
	"fmt"
	"net/http"

	"adoptme-adoption-process/internal/ports/notify"
)

// Notifier implementa notify.Dispatcher contra el endpoint de
// notificaciones del API central. El servicio lo invoca best-effort.
type Notifier struct {
	client *Client
}

func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

type notificationRequest struct {
	Tipo          string            `json:"tipo"`
	Destinatarios []string          `json:"destinatarios"`
	ProcesoID     string            `json:"procesoId"`
	Etapa         string            `json:"etapa,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

func (n *Notifier) Dispatch(ctx context.Context, ev notify.Event) error {
	if n == nil || n.client == nil || !n.client.IsConfigured() {
		return ErrNotConfigured
	}

	recipients := make([]string, 0, len(ev.Recipients))
	for _, r := range ev.Recipients {
		recipients = append(recipients, string(r))
	}

	req := notificationRequest{
		Tipo:          string(ev.Type),
		Destinatarios: recipients,
		ProcesoID:     ev.ProcessID,
		Etapa:         ev.StageName,
		Extra:         ev.Extra,
	}

	if err := n.client.http.DoJSON(ctx, http.MethodPost, "/api/notificaciones", n.client.headers(nil), req, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
