package usecase

import (
	"context"
	"time"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
)

// ProcessingStatus is a pure read of MetadataStore, per the Pipeline
// Engine's Status contract — the engine itself exposes no separate
// status API.
type ProcessingStatus struct {
	Status      domain.Status
	Progress    int
	Sensitivity *domain.Sensitivity
	Errors      []domain.ErrorEntry
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type GetProcessingStatus struct {
	Repo ports.MetadataStore
}

func (uc GetProcessingStatus) Execute(ctx context.Context, tenantID domain.TenantID, id domain.VideoID) (ProcessingStatus, error) {
	v, err := uc.Repo.Get(ctx, id)
	if err != nil {
		return ProcessingStatus{}, err
	}
	if v.TenantID != tenantID {
		return ProcessingStatus{}, domain.ErrForbidden
	}
	return ProcessingStatus{
		Status:      v.Status,
		Progress:    v.Progress,
		Sensitivity: v.Sensitivity,
		Errors:      v.Errors,
		CreatedAt:   v.CreatedAt,
		CompletedAt: v.ProcessingCompletedAt,
	}, nil
}
