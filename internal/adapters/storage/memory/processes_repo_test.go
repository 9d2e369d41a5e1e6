package memory

import (
	"context"
	"testing"
	"time"

	"adoptme-adoption-process/internal/domain/processes"
)

func TestProcessRepo_SaveCAS(t *testing.T) {
	repo := NewProcessRepo()
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	p := processes.NewProcess("proc-1", "req-1", "pet-1", "user-1", now)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Dos lecturas del mismo documento
	a, err := repo.GetByID(ctx, "proc-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	b, err := repo.GetByID(ctx, "proc-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}

	// La primera escritura gana
	saved, err := repo.Save(ctx, a)
	if err != nil {
		t.Fatalf("Save #1 error: %v", err)
	}
	if saved.Version != a.Version+1 {
		t.Fatalf("expected version bump, got %d", saved.Version)
	}

	// La segunda, con versión vieja, debe chocar
	if _, err := repo.Save(ctx, b); err != processes.ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestProcessRepo_SaveUnknownID(t *testing.T) {
	repo := NewProcessRepo()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	p := processes.NewProcess("ghost", "req-x", "pet-x", "user-x", now)
	if _, err := repo.Save(context.Background(), p); err != processes.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProcessRepo_ListByApplicant(t *testing.T) {
	repo := NewProcessRepo()
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	_ = repo.Create(ctx, processes.NewProcess("p1", "r1", "pet-1", "user-1", now))
	_ = repo.Create(ctx, processes.NewProcess("p2", "r2", "pet-2", "user-2", now.Add(time.Minute)))
	_ = repo.Create(ctx, processes.NewProcess("p3", "r3", "pet-3", "user-1", now.Add(2*time.Minute)))

	mine, err := repo.ListByApplicant(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByApplicant error: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 processes, got %d", len(mine))
	}
	if mine[0].ID != "p1" || mine[1].ID != "p3" {
		t.Fatalf("expected created_at order p1,p3 got %s,%s", mine[0].ID, mine[1].ID)
	}
}
