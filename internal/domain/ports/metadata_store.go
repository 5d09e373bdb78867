package ports

import (
	"context"

	"videoingest/internal/domain"
)

// MetadataStore persists Video records and their mutations. Writes for a
// given id are issued serially by that video's owning pipeline worker;
// the store itself need not serialize across ids.
type MetadataStore interface {
	Create(ctx context.Context, v domain.Video) error
	Update(ctx context.Context, v domain.Video) error
	Get(ctx context.Context, id domain.VideoID) (domain.Video, error)
	List(ctx context.Context, filter domain.VideoFilter) ([]domain.Video, error)
	Delete(ctx context.Context, id domain.VideoID) error
}
