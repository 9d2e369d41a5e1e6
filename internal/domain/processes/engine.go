package processes

import (
	"strings"
	"time"

	"adoptme-adoption-process/internal/ports/auth"
)

// engine.go contiene la lógica pura de transición de etapas.
// Las funciones reciben el proceso por valor y devuelven la copia
// mutada; no tocan persistencia ni disparan notificaciones.
// Eso queda en el Service (service.go).

// NewProcess crea un proceso para una solicitud de adopción aprobada.
// Invariante de creación: formulario nace approved (la aprobación de
// la solicitud lo implica); el resto de etapas en not-started.
func NewProcess(id, sourceRequestID, petID, applicantID string, now time.Time) AdoptionProcess {
	p := AdoptionProcess{
		ID:              id,
		SourceRequestID: sourceRequestID,
		PetID:           petID,
		ApplicantID:     applicantID,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for i, name := range StageOrder {
		p.Stages[i] = StageRecord{
			Name:   name,
			Status: StatusNotStarted,
			Data:   map[string]string{},
		}
	}

	approvedAt := now
	p.Stages[0].Status = StatusApproved
	p.Stages[0].ApprovedAt = &approvedAt

	return p
}

// RecordStageData guarda payload en la etapa indicada.
// Precondiciones: proceso no terminal, etapa = etapa actual, rol con
// capacidad de escritura sobre esa etapa. Si con el payload quedan
// cubiertos los campos requeridos, la etapa pasa a pending-review.
func RecordStageData(p AdoptionProcess, stage StageName, payload map[string]string, role auth.Role, now time.Time) (AdoptionProcess, error) {
	idx, ok := stageIndex(stage)
	if !ok {
		return AdoptionProcess{}, ErrInvalidStage
	}
	if p.IsTerminal() {
		return AdoptionProcess{}, ErrProcessTerminal
	}
	if !canPerform(role, stage, OpRecordData) {
		return AdoptionProcess{}, ErrForbidden
	}

	current, ok := p.CurrentStage()
	if !ok || current != stage {
		return AdoptionProcess{}, ErrOutOfOrder
	}
	if len(payload) == 0 {
		return AdoptionProcess{}, ErrInvalidInput
	}
	for k := range payload {
		if !fieldAllowed(stage, k) {
			return AdoptionProcess{}, ErrInvalidInput
		}
	}

	out := p.clone()
	rec := &out.Stages[idx]

	if rec.Data == nil {
		rec.Data = map[string]string{}
	}
	for k, v := range payload {
		v = strings.TrimSpace(v)
		if v == "" {
			delete(rec.Data, k)
			continue
		}
		rec.Data[k] = v
	}

	if rec.Status == StatusNotStarted && len(missingRequired(stage, rec.Data)) == 0 {
		rec.Status = StatusPendingReview
	}

	out.UpdatedAt = now
	return out, nil
}

// ApproveStage aprueba la etapa actual. Requiere que los campos
// requeridos estén presentes y rol de staff. Aprobar entrega marca el
// proceso como finalizado; los efectos (notificación process-completed,
// marcar mascota no disponible) los dispara el Service.
func ApproveStage(p AdoptionProcess, stage StageName, role auth.Role, now time.Time) (AdoptionProcess, error) {
	idx, ok := stageIndex(stage)
	if !ok {
		return AdoptionProcess{}, ErrInvalidStage
	}
	if p.IsTerminal() {
		return AdoptionProcess{}, ErrProcessTerminal
	}
	if !canPerform(role, stage, OpApprove) {
		return AdoptionProcess{}, ErrForbidden
	}

	current, ok := p.CurrentStage()
	if !ok || current != stage {
		return AdoptionProcess{}, ErrOutOfOrder
	}
	if len(missingRequired(stage, p.Stages[idx].Data)) > 0 {
		return AdoptionProcess{}, ErrStageNotReady
	}

	out := p.clone()
	rec := &out.Stages[idx]

	approvedAt := now
	rec.Status = StatusApproved
	rec.ApprovedAt = &approvedAt

	if stage == StageEntrega {
		out.Finalized = true
	}

	out.UpdatedAt = now
	return out, nil
}

// RejectStage rechaza la etapa actual con motivo y deja el proceso
// terminal: RejectedStage registra dónde se cortó.
func RejectStage(p AdoptionProcess, stage StageName, reason string, role auth.Role, now time.Time) (AdoptionProcess, error) {
	idx, ok := stageIndex(stage)
	if !ok {
		return AdoptionProcess{}, ErrInvalidStage
	}
	if p.IsTerminal() {
		return AdoptionProcess{}, ErrProcessTerminal
	}
	if !canPerform(role, stage, OpReject) {
		return AdoptionProcess{}, ErrForbidden
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return AdoptionProcess{}, ErrMissingReason
	}

	current, ok := p.CurrentStage()
	if !ok || current != stage {
		return AdoptionProcess{}, ErrOutOfOrder
	}

	out := p.clone()
	rec := &out.Stages[idx]

	rejectedAt := now
	rec.Status = StatusRejected
	rec.RejectionReason = reason
	rec.RejectedAt = &rejectedAt

	out.RejectedStage = stage
	out.UpdatedAt = now
	return out, nil
}
