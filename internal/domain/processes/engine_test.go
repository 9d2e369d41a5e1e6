package processes

import (
	"testing"
	"time"

	"adoptme-adoption-process/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestProcess() AdoptionProcess {
	return NewProcess("proc-1", "req-1", "pet-1", "user-1", testNow)
}

// advanceTo aprueba etapas en orden hasta dejar `until` como etapa actual.
func advanceTo(t *testing.T, p AdoptionProcess, until StageName) AdoptionProcess {
	t.Helper()

	for _, name := range StageOrder {
		if name == until {
			return p
		}
		if name == StageFormulario {
			continue // nace aprobada
		}

		var err error
		p, err = RecordStageData(p, name, stagePayload(name), auth.RoleAdmin, testNow)
		require.NoError(t, err, "record %s", name)
		p, err = ApproveStage(p, name, auth.RoleAdmin, testNow)
		require.NoError(t, err, "approve %s", name)
	}
	return p
}

func stagePayload(name StageName) map[string]string {
	switch name {
	case StageEntrevista:
		return map[string]string{"fechaEntrevista": "2025-01-10", "enlaceEntrevista": "https://meet.example/abc"}
	case StageVisita:
		return map[string]string{"fechaVisita": "2025-01-15", "responsableVisita": "staff-1"}
	case StageCompromiso:
		return map[string]string{"documentoCompromiso": "artifact://firma-123"}
	case StageEntrega:
		return map[string]string{"fechaEntrega": "2025-01-20", "entregadoPor": "staff-2"}
	}
	return nil
}

func TestNewProcess_FormularioStartsApproved(t *testing.T) {
	p := newTestProcess()

	form, ok := p.Stage(StageFormulario)
	require.True(t, ok)
	assert.Equal(t, StatusApproved, form.Status)
	require.NotNil(t, form.ApprovedAt)
	assert.Equal(t, testNow, *form.ApprovedAt)

	for _, name := range StageOrder[1:] {
		st, ok := p.Stage(name)
		require.True(t, ok)
		assert.Equal(t, StatusNotStarted, st.Status, "stage %s", name)
	}

	current, ok := p.CurrentStage()
	require.True(t, ok)
	assert.Equal(t, StageEntrevista, current)
	assert.False(t, p.IsTerminal())
	assert.EqualValues(t, 1, p.Version)
}

func TestRecordStageData_MovesToPendingReview(t *testing.T) {
	p := newTestProcess()

	got, err := RecordStageData(p, StageEntrevista, map[string]string{
		"fechaEntrevista": "2025-01-10",
	}, auth.RoleAdmin, testNow)
	require.NoError(t, err)

	st, _ := got.Stage(StageEntrevista)
	assert.Equal(t, StatusPendingReview, st.Status)
	assert.Equal(t, "2025-01-10", st.Data["fechaEntrevista"])

	// el proceso original no se muta (el engine trabaja sobre copias)
	orig, _ := p.Stage(StageEntrevista)
	assert.Equal(t, StatusNotStarted, orig.Status)
	assert.Empty(t, orig.Data)
}

func TestRecordStageData_PartialDataStaysNotStarted(t *testing.T) {
	p := newTestProcess()
	p = advanceTo(t, p, StageVisita)

	// visita requiere fechaVisita + responsableVisita; con uno solo no alcanza
	got, err := RecordStageData(p, StageVisita, map[string]string{
		"fechaVisita": "2025-01-15",
	}, auth.RoleAdmin, testNow)
	require.NoError(t, err)

	st, _ := got.Stage(StageVisita)
	assert.Equal(t, StatusNotStarted, st.Status)

	got, err = RecordStageData(got, StageVisita, map[string]string{
		"responsableVisita": "staff-1",
	}, auth.RoleAdmin, testNow)
	require.NoError(t, err)

	st, _ = got.Stage(StageVisita)
	assert.Equal(t, StatusPendingReview, st.Status)
}

func TestRecordStageData_Errors(t *testing.T) {
	p := newTestProcess()

	tests := []struct {
		name    string
		stage   StageName
		payload map[string]string
		role    auth.Role
		want    error
	}{
		{"unknown stage", StageName("revision"), map[string]string{"x": "y"}, auth.RoleAdmin, ErrInvalidStage},
		{"out of order", StageVisita, map[string]string{"fechaVisita": "2025-01-15"}, auth.RoleAdmin, ErrOutOfOrder},
		{"adoptante cannot write entrevista", StageEntrevista, map[string]string{"fechaEntrevista": "2025-01-10"}, auth.RoleAdoptante, ErrForbidden},
		{"empty payload", StageEntrevista, map[string]string{}, auth.RoleAdmin, ErrInvalidInput},
		{"unknown field", StageEntrevista, map[string]string{"telefono": "123"}, auth.RoleAdmin, ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RecordStageData(p, tc.stage, tc.payload, tc.role, testNow)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRecordStageData_AdoptanteSignsCompromiso(t *testing.T) {
	p := newTestProcess()
	p = advanceTo(t, p, StageCompromiso)

	got, err := RecordStageData(p, StageCompromiso, map[string]string{
		"documentoCompromiso": "artifact://firma-999",
	}, auth.RoleAdoptante, testNow)
	require.NoError(t, err)

	st, _ := got.Stage(StageCompromiso)
	assert.Equal(t, StatusPendingReview, st.Status)
	assert.Equal(t, "artifact://firma-999", st.Data["documentoCompromiso"])
}

func TestApproveStage_RequiresData(t *testing.T) {
	p := newTestProcess()

	_, err := ApproveStage(p, StageEntrevista, auth.RoleAdmin, testNow)
	assert.ErrorIs(t, err, ErrStageNotReady)

	p, err = RecordStageData(p, StageEntrevista, map[string]string{
		"fechaEntrevista": "2025-01-10",
	}, auth.RoleAdmin, testNow)
	require.NoError(t, err)

	got, err := ApproveStage(p, StageEntrevista, auth.RoleAdmin, testNow)
	require.NoError(t, err)

	st, _ := got.Stage(StageEntrevista)
	assert.Equal(t, StatusApproved, st.Status)
	require.NotNil(t, st.ApprovedAt)

	next, _ := got.Stage(StageVisita)
	assert.Equal(t, StatusNotStarted, next.Status)
	assert.False(t, got.Finalized)
}

func TestApproveStage_OutOfOrder(t *testing.T) {
	p := newTestProcess()

	// visita antes de que entrevista esté aprobada
	_, err := ApproveStage(p, StageVisita, auth.RoleAdmin, testNow)
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestApproveStage_RoleGate(t *testing.T) {
	p := newTestProcess()
	p, err := RecordStageData(p, StageEntrevista, stagePayload(StageEntrevista), auth.RoleAdmin, testNow)
	require.NoError(t, err)

	_, err = ApproveStage(p, StageEntrevista, auth.RoleAdoptante, testNow)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = ApproveStage(p, StageEntrevista, auth.RoleFundacionAdmin, testNow)
	assert.NoError(t, err)
}

func TestApproveStage_EntregaFinalizes(t *testing.T) {
	p := newTestProcess()
	p = advanceTo(t, p, StageEntrega)

	p, err := RecordStageData(p, StageEntrega, stagePayload(StageEntrega), auth.RoleAdmin, testNow)
	require.NoError(t, err)

	got, err := ApproveStage(p, StageEntrega, auth.RoleAdmin, testNow)
	require.NoError(t, err)

	assert.True(t, got.Finalized)
	assert.True(t, got.IsTerminal())

	_, ok := got.CurrentStage()
	assert.False(t, ok, "no current stage once all approved")
}

func TestRejectStage_RequiresReason(t *testing.T) {
	p := newTestProcess()

	_, err := RejectStage(p, StageEntrevista, "", auth.RoleAdmin, testNow)
	assert.ErrorIs(t, err, ErrMissingReason)

	_, err = RejectStage(p, StageEntrevista, "   ", auth.RoleAdmin, testNow)
	assert.ErrorIs(t, err, ErrMissingReason)
}

func TestRejectStage_MarksProcessTerminal(t *testing.T) {
	p := newTestProcess()
	p = advanceTo(t, p, StageVisita)

	got, err := RejectStage(p, StageVisita, "vivienda no apta", auth.RoleAdmin, testNow)
	require.NoError(t, err)

	st, _ := got.Stage(StageVisita)
	assert.Equal(t, StatusRejected, st.Status)
	assert.Equal(t, "vivienda no apta", st.RejectionReason)
	require.NotNil(t, st.RejectedAt)

	assert.Equal(t, StageVisita, got.RejectedStage)
	assert.True(t, got.IsTerminal())
	assert.False(t, got.Finalized)

	// proceso terminal: ninguna operación avanza, en ninguna etapa
	_, err = ApproveStage(got, StageCompromiso, auth.RoleAdmin, testNow)
	assert.ErrorIs(t, err, ErrProcessTerminal)

	_, err = RecordStageData(got, StageVisita, stagePayload(StageVisita), auth.RoleAdmin, testNow)
	assert.ErrorIs(t, err, ErrProcessTerminal)

	_, err = RejectStage(got, StageVisita, "otra vez", auth.RoleAdmin, testNow)
	assert.ErrorIs(t, err, ErrProcessTerminal)
}

func TestFinalizedProcessRejectsMutation(t *testing.T) {
	p := newTestProcess()
	p = advanceTo(t, p, StageEntrega)
	p, err := RecordStageData(p, StageEntrega, stagePayload(StageEntrega), auth.RoleAdmin, testNow)
	require.NoError(t, err)
	p, err = ApproveStage(p, StageEntrega, auth.RoleAdmin, testNow)
	require.NoError(t, err)

	for _, name := range StageOrder {
		_, err := RecordStageData(p, name, map[string]string{"observaciones": "x"}, auth.RoleAdmin, testNow)
		assert.ErrorIs(t, err, ErrProcessTerminal, "record %s", name)

		_, err = ApproveStage(p, name, auth.RoleAdmin, testNow)
		assert.ErrorIs(t, err, ErrProcessTerminal, "approve %s", name)

		_, err = RejectStage(p, name, "motivo", auth.RoleAdmin, testNow)
		assert.ErrorIs(t, err, ErrProcessTerminal, "reject %s", name)
	}
}

// Invariante de orden: las etapas aprobadas siempre forman un prefijo
// del orden fijo, en cualquier punto del avance.
func TestApprovedStagesFormPrefix(t *testing.T) {
	p := newTestProcess()

	for _, until := range []StageName{StageEntrevista, StageVisita, StageCompromiso, StageEntrega} {
		p = advanceTo(t, p, until)

		sawUnapproved := false
		for _, st := range p.Stages {
			if st.Status != StatusApproved {
				sawUnapproved = true
				continue
			}
			require.False(t, sawUnapproved, "approved stage %s after an unapproved one", st.Name)
		}
	}
}
