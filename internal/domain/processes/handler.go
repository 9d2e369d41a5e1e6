package processes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"adoptme-adoption-process/internal/middleware"
	"adoptme-adoption-process/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/processes", func(pr chi.Router) {
		pr.Post("/", startProcessHandler(svc))
		pr.Get("/", listProcessesHandler(svc))
		pr.Get("/{processID}", getProcessHandler(svc))

		pr.Route("/{processID}/stages/{stageName}", func(sr chi.Router) {
			sr.Put("/", recordStageDataHandler(svc))
			sr.Post("/approve", approveStageHandler(svc))
			sr.Post("/reject", rejectStageHandler(svc))
		})
	})
}

type startProcessRequest struct {
	SourceRequestID string `json:"source_request_id"`
	PetID           string `json:"pet_id"`
	ApplicantID     string `json:"applicant_id"`
}

type rejectStageRequest struct {
	Reason string `json:"reason"`
}

type stageResponse struct {
	Name            StageName         `json:"name"`
	Status          StageStatus       `json:"status"`
	Data            map[string]string `json:"data"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	RejectedAt      *time.Time        `json:"rejected_at,omitempty"`
}

type processResponse struct {
	ID              string          `json:"id"`
	SourceRequestID string          `json:"source_request_id"`
	PetID           string          `json:"pet_id"`
	ApplicantID     string          `json:"applicant_id"`
	Stages          []stageResponse `json:"stages"`
	CurrentStage    string          `json:"current_stage,omitempty"`
	Finalized       bool            `json:"finalized"`
	RejectedStage   string          `json:"rejected_stage,omitempty"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// errorResponse lleva un código estable por tipo de error para que el
// cliente distinga "etapa equivocada" de "faltan datos" de "no permitido".
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// startProcessHandler godoc
// @Summary Iniciar proceso de adopción
// @Description Crea el proceso de adopción cuando una solicitud fue aprobada en el API central. Solo staff (admin, fundacionAdmin). Formulario nace aprobado. Idempotente por source_request_id.
// @Tags processes
// @Accept json
// @Produce json
// @Param payload body startProcessRequest true "Referencias a la solicitud aprobada"
// @Success 201 {object} processResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /processes [post]
func startProcessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req startProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid-json", "invalid json")
			return
		}

		p, err := svc.Start(r.Context(), claims, StartInput{
			SourceRequestID: req.SourceRequestID,
			PetID:           req.PetID,
			ApplicantID:     req.ApplicantID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProcessResponse(p))
	}
}

// listProcessesHandler godoc
// @Summary Listar procesos de adopción
// @Description Staff ve todos los procesos; el adoptante solo los propios.
// @Tags processes
// @Produce json
// @Success 200 {array} processResponse
// @Failure 401 {object} errorResponse
// @Router /processes [get]
func listProcessesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.List(r.Context(), claims)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]processResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProcessResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getProcessHandler godoc
// @Summary Obtener un proceso de adopción
// @Tags processes
// @Produce json
// @Param processID path string true "ID del proceso"
// @Success 200 {object} processResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /processes/{processID} [get]
func getProcessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		p, err := svc.GetByID(r.Context(), claims, chi.URLParam(r, "processID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProcessResponse(p))
	}
}

// recordStageDataHandler godoc
// @Summary Registrar datos de la etapa actual
// @Description Guarda el payload de la etapa (ej: fechaEntrevista). Staff escribe cualquier etapa; el adoptante solo compromiso (su firma). Con los campos requeridos completos la etapa pasa a pending-review.
// @Tags processes
// @Accept json
// @Produce json
// @Param processID path string true "ID del proceso"
// @Param stageName path string true "Etapa" Enums(formulario, entrevista, visita, compromiso, entrega)
// @Param payload body map[string]string true "Datos de la etapa"
// @Success 200 {object} processResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /processes/{processID}/stages/{stageName} [put]
func recordStageDataHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid-json", "invalid json")
			return
		}

		p, err := svc.RecordStageData(
			r.Context(),
			claims,
			chi.URLParam(r, "processID"),
			StageName(chi.URLParam(r, "stageName")),
			payload,
		)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProcessResponse(p))
	}
}

// approveStageHandler godoc
// @Summary Aprobar la etapa actual
// @Description Solo admin/fundacionAdmin. Requiere los campos requeridos de la etapa. Aprobar entrega finaliza el proceso, notifica process-completed y marca la mascota como no disponible.
// @Tags processes
// @Produce json
// @Param processID path string true "ID del proceso"
// @Param stageName path string true "Etapa" Enums(formulario, entrevista, visita, compromiso, entrega)
// @Success 200 {object} processResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /processes/{processID}/stages/{stageName}/approve [post]
func approveStageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		p, err := svc.ApproveStage(
			r.Context(),
			claims,
			chi.URLParam(r, "processID"),
			StageName(chi.URLParam(r, "stageName")),
		)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProcessResponse(p))
	}
}

// rejectStageHandler godoc
// @Summary Rechazar la etapa actual
// @Description Solo admin/fundacionAdmin, con motivo obligatorio. Deja el proceso terminal.
// @Tags processes
// @Accept json
// @Produce json
// @Param processID path string true "ID del proceso"
// @Param stageName path string true "Etapa" Enums(formulario, entrevista, visita, compromiso, entrega)
// @Param payload body rejectStageRequest true "Motivo del rechazo"
// @Success 200 {object} processResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /processes/{processID}/stages/{stageName}/reject [post]
func rejectStageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req rejectStageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid-json", "invalid json")
			return
		}

		p, err := svc.RejectStage(
			r.Context(),
			claims,
			chi.URLParam(r, "processID"),
			StageName(chi.URLParam(r, "stageName")),
			req.Reason,
		)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProcessResponse(p))
	}
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	c, found := middleware.GetClaims(r.Context())
	if !found || strings.TrimSpace(c.UserID) == "" || !c.Role.IsValid() {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return auth.Claims{}, false
	}
	return c, true
}

// writeDomainError mapea la taxonomía del engine a status + código estable.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not-found", "process not found")
	case errors.Is(err, ErrInvalidStage):
		writeError(w, http.StatusBadRequest, "invalid-stage", "unknown stage name")
	case errors.Is(err, ErrOutOfOrder):
		writeError(w, http.StatusConflict, "out-of-order", "stage is not the current stage")
	case errors.Is(err, ErrStageNotReady):
		writeError(w, http.StatusUnprocessableEntity, "stage-not-ready", "required stage data missing")
	case errors.Is(err, ErrMissingReason):
		writeError(w, http.StatusBadRequest, "missing-reason", "rejection reason required")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "role lacks capability for this operation")
	case errors.Is(err, ErrProcessTerminal):
		writeError(w, http.StatusConflict, "process-terminal", "process already finalized or rejected")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "process was modified concurrently, retry")
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid-input", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func toProcessResponse(p AdoptionProcess) processResponse {
	stages := make([]stageResponse, 0, len(p.Stages))
	for _, st := range p.Stages {
		stages = append(stages, stageResponse{
			Name:            st.Name,
			Status:          st.Status,
			Data:            st.Data,
			RejectionReason: st.RejectionReason,
			ApprovedAt:      st.ApprovedAt,
			RejectedAt:      st.RejectedAt,
		})
	}

	current := ""
	if name, ok := p.CurrentStage(); ok {
		current = string(name)
	}

	return processResponse{
		ID:              p.ID,
		SourceRequestID: p.SourceRequestID,
		PetID:           p.PetID,
		ApplicantID:     p.ApplicantID,
		Stages:          stages,
		CurrentStage:    current,
		Finalized:       p.Finalized,
		RejectedStage:   string(p.RejectedStage),
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeJSON vive en cada módulo de dominio a propósito: todavía no
// amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
