package processes

import "time"

// StageName identifica una de las cinco etapas fijas del proceso de adopción.
type StageName string

const (
	StageFormulario StageName = "formulario"
	StageEntrevista StageName = "entrevista"
	StageVisita     StageName = "visita"
	StageCompromiso StageName = "compromiso"
	StageEntrega    StageName = "entrega"
)

// StageCount es la cantidad fija de etapas. El orden es un invariante
// del dominio: formulario < entrevista < visita < compromiso < entrega.
const StageCount = 5

// StageOrder define el orden fijo de las etapas. Nunca se reordena.
var StageOrder = [StageCount]StageName{
	StageFormulario,
	StageEntrevista,
	StageVisita,
	StageCompromiso,
	StageEntrega,
}

// StageStatus representa el estado de una etapa individual.
// Transiciones por etapa: not-started -> pending-review -> {approved | rejected}.
type StageStatus string

const (
	StatusNotStarted    StageStatus = "not-started"
	StatusPendingReview StageStatus = "pending-review"
	StatusApproved      StageStatus = "approved"
	StatusRejected      StageStatus = "rejected"
)

// StageRecord guarda el estado y los datos de una etapa.
// Data es libre por etapa pero validado contra campos requeridos
// antes de permitir pending-review / approved (ver stages.go).
type StageRecord struct {
	Name   StageName
	Status StageStatus

	Data map[string]string

	RejectionReason string

	ApprovedAt *time.Time
	RejectedAt *time.Time
}

// AdoptionProcess es el registro completo de un proceso de adopción:
// las cinco etapas viven en un solo documento, en orden fijo.
// Nunca se borra físicamente (registro de archivo).
type AdoptionProcess struct {
	ID string

	// Inmutables después de la creación.
	SourceRequestID string
	PetID           string
	ApplicantID     string

	Stages [StageCount]StageRecord

	// Finalized es true solo cuando entrega está aprobada.
	// Mutuamente excluyente con RejectedStage.
	Finalized     bool
	RejectedStage StageName

	// Version habilita compare-and-swap en persistencia para evitar
	// doble avance ante escrituras concurrentes.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal indica si el proceso ya no admite mutaciones:
// finalizado o rechazado en alguna etapa.
func (p AdoptionProcess) IsTerminal() bool {
	return p.Finalized || p.RejectedStage != ""
}

// CurrentStage es la primera etapa en orden fijo cuyo status no es approved.
// Se deriva siempre, nunca se almacena, para evitar divergencia.
// ok=false significa que las cinco etapas están aprobadas.
func (p AdoptionProcess) CurrentStage() (StageName, bool) {
	for _, st := range p.Stages {
		if st.Status != StatusApproved {
			return st.Name, true
		}
	}
	return "", false
}

// Stage devuelve el registro de la etapa pedida.
func (p AdoptionProcess) Stage(name StageName) (StageRecord, bool) {
	idx, ok := stageIndex(name)
	if !ok {
		return StageRecord{}, false
	}
	return p.Stages[idx], true
}

// clone devuelve una copia profunda; el engine trabaja sobre copias
// para que una transición rechazada no deje mutaciones parciales.
func (p AdoptionProcess) clone() AdoptionProcess {
	out := p
	for i := range out.Stages {
		if p.Stages[i].Data != nil {
			data := make(map[string]string, len(p.Stages[i].Data))
			for k, v := range p.Stages[i].Data {
				data[k] = v
			}
			out.Stages[i].Data = data
		}
		if p.Stages[i].ApprovedAt != nil {
			t := *p.Stages[i].ApprovedAt
			out.Stages[i].ApprovedAt = &t
		}
		if p.Stages[i].RejectedAt != nil {
			t := *p.Stages[i].RejectedAt
			out.Stages[i].RejectedAt = &t
		}
	}
	return out
}

func stageIndex(name StageName) (int, bool) {
	for i, n := range StageOrder {
		if n == name {
			return i, true
		}
	}
	return -1, false
}
