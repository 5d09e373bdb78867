package usecase

import (
	"context"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
)

// DeleteVideo removes a Video's record. Deletion is forbidden while a
// pipeline job for it is non-terminal; the caller must retry once the
// job reaches safe/flagged/failed.
type DeleteVideo struct {
	Repo ports.MetadataStore
}

func (uc DeleteVideo) Execute(ctx context.Context, tenantID domain.TenantID, id domain.VideoID) error {
	v, err := uc.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if v.TenantID != tenantID {
		return domain.ErrForbidden
	}
	if !v.Status.Terminal() {
		return ErrNotTerminal
	}
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return wrapRepo(err)
	}
	return nil
}
