package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"adoptme-adoption-process/internal/domain/processes"
)

// ProcessesRepo persiste cada AdoptionProcess como una sola fila:
// las cinco etapas viajan en una columna JSONB, así la actualización
// es atómica por documento. Save usa compare-and-swap sobre version.
type ProcessesRepo struct {
	db *sql.DB
}

func NewProcessesRepo(db *sql.DB) *ProcessesRepo {
	return &ProcessesRepo{db: db}
}

// stageDoc es la forma JSONB de una etapa dentro de la columna stages.
type stageDoc struct {
	Name            string            `json:"name"`
	Status          string            `json:"status"`
	Data            map[string]string `json:"data"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	RejectedAt      *time.Time        `json:"rejected_at,omitempty"`
}

func (r *ProcessesRepo) Create(ctx context.Context, p processes.AdoptionProcess) error {
	stages, err := marshalStages(p.Stages)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO adoption_processes (
			id, source_request_id, pet_id, applicant_id,
			stages, finalized, rejected_stage,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.SourceRequestID,
		p.PetID,
		p.ApplicantID,
		stages,
		p.Finalized,
		string(p.RejectedStage),
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *ProcessesRepo) Save(ctx context.Context, p processes.AdoptionProcess) (processes.AdoptionProcess, error) {
	stages, err := marshalStages(p.Stages)
	if err != nil {
		return processes.AdoptionProcess{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE adoption_processes
		SET
			stages = $2,
			finalized = $3,
			rejected_stage = $4,
			version = version + 1,
			updated_at = $5
		WHERE id = $1 AND version = $6
	`,
		p.ID,
		stages,
		p.Finalized,
		string(p.RejectedStage),
		p.UpdatedAt,
		p.Version,
	)
	if err != nil {
		return processes.AdoptionProcess{}, err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		// Distinguir conflicto de inexistente: si la fila está pero la
		// versión no coincide, alguien escribió entre lectura y update.
		var exists bool
		err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM adoption_processes WHERE id = $1)`, p.ID,
		).Scan(&exists)
		if err != nil {
			return processes.AdoptionProcess{}, err
		}
		if exists {
			return processes.AdoptionProcess{}, processes.ErrConflict
		}
		return processes.AdoptionProcess{}, processes.ErrNotFound
	}

	p.Version++
	return p, nil
}

func (r *ProcessesRepo) GetByID(ctx context.Context, id string) (processes.AdoptionProcess, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return processes.AdoptionProcess{}, processes.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectProcess+` WHERE id = $1`, id)
	return scanProcess(row)
}

func (r *ProcessesRepo) GetBySourceRequest(ctx context.Context, sourceRequestID string) (processes.AdoptionProcess, error) {
	sourceRequestID = strings.TrimSpace(sourceRequestID)
	if sourceRequestID == "" {
		return processes.AdoptionProcess{}, processes.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectProcess+` WHERE source_request_id = $1`, sourceRequestID)
	return scanProcess(row)
}

func (r *ProcessesRepo) List(ctx context.Context) ([]processes.AdoptionProcess, error) {
	rows, err := r.db.QueryContext(ctx, selectProcess+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProcesses(rows)
}

func (r *ProcessesRepo) ListByApplicant(ctx context.Context, applicantID string) ([]processes.AdoptionProcess, error) {
	applicantID = strings.TrimSpace(applicantID)
	if applicantID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		selectProcess+` WHERE applicant_id = $1 ORDER BY created_at ASC`, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProcesses(rows)
}

const selectProcess = `
	SELECT
		id, source_request_id, pet_id, applicant_id,
		stages, finalized, rejected_stage,
		version, created_at, updated_at
	FROM adoption_processes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProcess(row rowScanner) (processes.AdoptionProcess, error) {
	var p processes.AdoptionProcess
	var stagesRaw []byte
	var rejectedStage string

	if err := row.Scan(
		&p.ID,
		&p.SourceRequestID,
		&p.PetID,
		&p.ApplicantID,
		&stagesRaw,
		&p.Finalized,
		&rejectedStage,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return processes.AdoptionProcess{}, processes.ErrNotFound
		}
		return processes.AdoptionProcess{}, err
	}

	p.RejectedStage = processes.StageName(rejectedStage)

	stages, err := unmarshalStages(stagesRaw)
	if err != nil {
		return processes.AdoptionProcess{}, err
	}
	p.Stages = stages

	return p, nil
}

func scanProcesses(rows *sql.Rows) ([]processes.AdoptionProcess, error) {
	out := make([]processes.AdoptionProcess, 0)
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func marshalStages(stages [processes.StageCount]processes.StageRecord) ([]byte, error) {
	docs := make([]stageDoc, 0, len(stages))
	for _, st := range stages {
		docs = append(docs, stageDoc{
			Name:            string(st.Name),
			Status:          string(st.Status),
			Data:            st.Data,
			RejectionReason: st.RejectionReason,
			ApprovedAt:      st.ApprovedAt,
			RejectedAt:      st.RejectedAt,
		})
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshal stages: %w", err)
	}
	return b, nil
}

func unmarshalStages(raw []byte) ([processes.StageCount]processes.StageRecord, error) {
	var out [processes.StageCount]processes.StageRecord

	var docs []stageDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return out, fmt.Errorf("unmarshal stages: %w", err)
	}
	if len(docs) != processes.StageCount {
		return out, fmt.Errorf("unexpected stage count %d", len(docs))
	}

	for i, d := range docs {
		data := d.Data
		if data == nil {
			data = map[string]string{}
		}
		out[i] = processes.StageRecord{
			Name:            processes.StageName(d.Name),
			Status:          processes.StageStatus(d.Status),
			Data:            data,
			RejectionReason: d.RejectionReason,
			ApprovedAt:      d.ApprovedAt,
			RejectedAt:      d.RejectedAt,
		}
	}

	return out, nil
}
