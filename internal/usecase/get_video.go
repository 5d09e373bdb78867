package usecase

import (
	"context"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
)

// GetVideo resolves a single Video, defensively blocking cross-tenant
// reads before they reach the caller.
type GetVideo struct {
	Repo ports.MetadataStore
}

func (uc GetVideo) Execute(ctx context.Context, tenantID domain.TenantID, id domain.VideoID) (domain.Video, error) {
	v, err := uc.Repo.Get(ctx, id)
	if err != nil {
		return domain.Video{}, err
	}
	if v.TenantID != tenantID {
		return domain.Video{}, domain.ErrForbidden
	}
	return v, nil
}

// ListVideos scopes a listing query to the caller's tenant.
type ListVideos struct {
	Repo ports.MetadataStore
}

func (uc ListVideos) Execute(ctx context.Context, filter domain.VideoFilter) ([]domain.Video, error) {
	videos, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, wrapRepo(err)
	}
	return videos, nil
}
