package processes

import (
	"strings"

	"adoptme-adoption-process/internal/ports/auth"
)

// Campos requeridos por etapa para permitir pending-review / approved.
// Formulario nace aprobado (la aprobación de la solicitud lo implica),
// así que no exige datos propios.
var requiredFields = map[StageName][]string{
	StageFormulario: {},
	StageEntrevista: {"fechaEntrevista"},
	StageVisita:     {"fechaVisita", "responsableVisita"},
	StageCompromiso: {"documentoCompromiso"},
	StageEntrega:    {"fechaEntrega", "entregadoPor"},
}

// Campos aceptados por etapa (requeridos + opcionales). Payloads con
// claves fuera de esta lista se rechazan como entrada inválida.
var allowedFields = map[StageName][]string{
	StageFormulario: {},
	StageEntrevista: {"fechaEntrevista", "enlaceEntrevista", "observaciones"},
	StageVisita:     {"fechaVisita", "responsableVisita", "observaciones"},
	StageCompromiso: {"documentoCompromiso", "observaciones"},
	StageEntrega:    {"fechaEntrega", "entregadoPor", "observaciones"},
}

// RequiredFields expone los campos requeridos de una etapa (copia).
func RequiredFields(name StageName) []string {
	fields, ok := requiredFields[name]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Operation es una operación del engine sujeta a capacidades por rol.
type Operation string

const (
	OpRecordData Operation = "record-data"
	OpApprove    Operation = "approve"
	OpReject     Operation = "reject"
)

// staffRoles son los roles de fundación que gestionan el pipeline.
var staffRoles = []auth.Role{auth.RoleAdmin, auth.RoleFundacionAdmin}

// canPerform es la tabla de capacidades (rol, etapa, operación).
// Centralizada aquí en vez de chequeos dispersos por handler:
// - staff registra datos de cualquier etapa y aprueba/rechaza;
// - el adoptante solo registra compromiso (su firma).
func canPerform(role auth.Role, stage StageName, op Operation) bool {
	switch op {
	case OpApprove, OpReject:
		return isStaff(role)
	case OpRecordData:
		if isStaff(role) {
			return true
		}
		return role == auth.RoleAdoptante && stage == StageCompromiso
	default:
		return false
	}
}

func isStaff(role auth.Role) bool {
	for _, r := range staffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// missingRequired devuelve los campos requeridos ausentes o vacíos.
func missingRequired(stage StageName, data map[string]string) []string {
	var missing []string
	for _, f := range requiredFields[stage] {
		if strings.TrimSpace(data[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func fieldAllowed(stage StageName, field string) bool {
	for _, f := range allowedFields[stage] {
		if f == field {
			return true
		}
	}
	return false
}
