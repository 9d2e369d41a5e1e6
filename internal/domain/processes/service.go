package processes

import (
	"context"
	"strings"
	"time"

	"adoptme-adoption-process/internal/platform/logger"
	"adoptme-adoption-process/internal/ports/auth"
	"adoptme-adoption-process/internal/ports/notify"
	"adoptme-adoption-process/internal/ports/petcatalog"

	"github.com/google/uuid"
)

// Service orquesta el engine con persistencia y efectos laterales:
// load -> engine -> save (CAS) -> notificación / catálogo best-effort.
// Los efectos laterales nunca bloquean ni revierten la transición.
type Service struct {
	repo       Repository
	dispatcher notify.Dispatcher
	catalog    petcatalog.Catalog
	log        logger.Logger

	now func() time.Time

	// spawn corre los efectos best-effort fuera del camino crítico.
	// Inyectable para que los tests los ejecuten en línea.
	spawn func(fn func())
}

func NewService(repo Repository, dispatcher notify.Dispatcher, catalog petcatalog.Catalog, log logger.Logger) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		catalog:    catalog,
		log:        log,
		now:        time.Now,
		spawn:      func(fn func()) { go fn() },
	}
}

var staffRecipients = []notify.Recipient{
	notify.Recipient(auth.RoleAdmin),
	notify.Recipient(auth.RoleFundacionAdmin),
}

type StartInput struct {
	SourceRequestID string
	PetID           string
	ApplicantID     string
}

// Start crea el proceso cuando el API central aprueba una solicitud de
// adopción. Idempotente por solicitud: una segunda creación para el
// mismo sourceRequestId devuelve el proceso existente.
func (s *Service) Start(ctx context.Context, claims auth.Claims, in StartInput) (AdoptionProcess, error) {
	if !isStaff(claims.Role) {
		return AdoptionProcess{}, ErrForbidden
	}

	sourceID := strings.TrimSpace(in.SourceRequestID)
	petID := strings.TrimSpace(in.PetID)
	applicantID := strings.TrimSpace(in.ApplicantID)
	if sourceID == "" || petID == "" || applicantID == "" {
		return AdoptionProcess{}, ErrInvalidInput
	}

	if existing, err := s.repo.GetBySourceRequest(ctx, sourceID); err == nil {
		return existing, nil
	}

	p := NewProcess(uuid.NewString(), sourceID, petID, applicantID, s.now())
	if err := s.repo.Create(ctx, p); err != nil {
		return AdoptionProcess{}, err
	}

	s.notifyAsync(ctx, notify.Event{
		Type:       notify.EventProcessStarted,
		Recipients: []notify.Recipient{notify.Recipient(p.ApplicantID)},
		ProcessID:  p.ID,
		Extra:      map[string]string{"petId": p.PetID},
	})

	return p, nil
}

// GetByID devuelve un proceso. El adoptante solo puede ver los suyos.
func (s *Service) GetByID(ctx context.Context, claims auth.Claims, id string) (AdoptionProcess, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return AdoptionProcess{}, err
	}
	if !isStaff(claims.Role) && p.ApplicantID != claims.UserID {
		return AdoptionProcess{}, ErrForbidden
	}
	return p, nil
}

// List devuelve todos los procesos para staff; para el adoptante,
// solo aquellos donde es el solicitante.
func (s *Service) List(ctx context.Context, claims auth.Claims) ([]AdoptionProcess, error) {
	if isStaff(claims.Role) {
		return s.repo.List(ctx)
	}
	return s.repo.ListByApplicant(ctx, claims.UserID)
}

// RecordStageData guarda datos de la etapa actual y avisa al staff que
// hay material para revisar.
func (s *Service) RecordStageData(ctx context.Context, claims auth.Claims, processID string, stage StageName, payload map[string]string) (AdoptionProcess, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(processID))
	if err != nil {
		return AdoptionProcess{}, err
	}
	if claims.Role == auth.RoleAdoptante && p.ApplicantID != claims.UserID {
		return AdoptionProcess{}, ErrForbidden
	}

	next, err := RecordStageData(p, stage, payload, claims.Role, s.now())
	if err != nil {
		return AdoptionProcess{}, err
	}

	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return AdoptionProcess{}, err
	}

	s.notifyAsync(ctx, notify.Event{
		Type:       notify.EventStageDataRecorded,
		Recipients: staffRecipients,
		ProcessID:  saved.ID,
		StageName:  string(stage),
	})

	return saved, nil
}

// ApproveStage aprueba la etapa actual. Si la etapa es entrega, además
// de la notificación de avance dispara process-completed y marca la
// mascota como no disponible en el catálogo (ambos best-effort).
func (s *Service) ApproveStage(ctx context.Context, claims auth.Claims, processID string, stage StageName) (AdoptionProcess, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(processID))
	if err != nil {
		return AdoptionProcess{}, err
	}

	next, err := ApproveStage(p, stage, claims.Role, s.now())
	if err != nil {
		return AdoptionProcess{}, err
	}

	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return AdoptionProcess{}, err
	}

	s.notifyAsync(ctx, notify.Event{
		Type:       notify.EventStageApproved,
		Recipients: []notify.Recipient{notify.Recipient(saved.ApplicantID)},
		ProcessID:  saved.ID,
		StageName:  string(stage),
	})

	if saved.Finalized {
		recipients := append([]notify.Recipient{notify.Recipient(saved.ApplicantID)}, staffRecipients...)
		s.notifyAsync(ctx, notify.Event{
			Type:       notify.EventProcessCompleted,
			Recipients: recipients,
			ProcessID:  saved.ID,
			StageName:  string(StageEntrega),
			Extra:      map[string]string{"petId": saved.PetID},
		})
		s.markPetUnavailableAsync(ctx, saved.PetID, saved.ID)
	}

	return saved, nil
}

// RejectStage rechaza la etapa actual y deja el proceso terminal.
func (s *Service) RejectStage(ctx context.Context, claims auth.Claims, processID string, stage StageName, reason string) (AdoptionProcess, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(processID))
	if err != nil {
		return AdoptionProcess{}, err
	}

	next, err := RejectStage(p, stage, reason, claims.Role, s.now())
	if err != nil {
		return AdoptionProcess{}, err
	}

	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return AdoptionProcess{}, err
	}

	rejected, _ := saved.Stage(stage)
	s.notifyAsync(ctx, notify.Event{
		Type:       notify.EventStageRejected,
		Recipients: []notify.Recipient{notify.Recipient(saved.ApplicantID)},
		ProcessID:  saved.ID,
		StageName:  string(stage),
		Extra:      map[string]string{"motivo": rejected.RejectionReason},
	})

	return saved, nil
}

// notifyAsync despacha fuera del camino crítico. Un fallo del
// dispatcher se loguea y no se propaga al caller.
func (s *Service) notifyAsync(ctx context.Context, ev notify.Event) {
	if s.dispatcher == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	s.spawn(func() {
		if err := s.dispatcher.Dispatch(detached, ev); err != nil {
			s.log.Warn("notification dispatch failed", map[string]any{
				"event":      string(ev.Type),
				"process_id": ev.ProcessID,
				"stage":      ev.StageName,
				"error":      err.Error(),
			})
		}
	})
}

func (s *Service) markPetUnavailableAsync(ctx context.Context, petID, processID string) {
	if s.catalog == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	s.spawn(func() {
		if err := s.catalog.MarkUnavailable(detached, petID); err != nil {
			s.log.Warn("pet catalog update failed", map[string]any{
				"pet_id":     petID,
				"process_id": processID,
				"error":      err.Error(),
			})
		}
	})
}
