package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
)

const maxUploadBytes = 2 << 30 // 2 GiB

var ErrInvalidUpload = errors.New("invalid upload")

// Intake accepts an already-authenticated, already-authorized upload and
// persists its bytes, writes the Video record, publishes video-uploaded,
// and schedules the pipeline, in that order so subscribers always see
// the upload before the first progress update.
type Intake struct {
	Repo     ports.MetadataStore
	Blobs    ports.BlobWriter
	Bus      ports.EventBus
	Pipeline ports.Pipeline
	Clock    ports.Clock
	NewID    func() domain.VideoID
}

type IntakeInput struct {
	TenantID    domain.TenantID
	OwnerID     domain.UserID
	Title       string
	Description string
	Filename    string
	Size        int64
	File        io.Reader
}

func (uc Intake) Execute(ctx context.Context, in IntakeInput) (domain.Video, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Video{}, fmt.Errorf("%w: title is required", ErrInvalidUpload)
	}
	if in.File == nil || in.Size <= 0 {
		return domain.Video{}, fmt.Errorf("%w: file is required", ErrInvalidUpload)
	}
	if in.Size > maxUploadBytes {
		return domain.Video{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, maxUploadBytes)
	}

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now()
	}

	id := uc.newID()
	blobRef := "videos/" + string(id)

	if err := uc.Blobs.Write(ctx, blobRef, in.File, in.Size); err != nil {
		return domain.Video{}, wrapBlob(err)
	}

	video := domain.Video{
		ID:          id,
		TenantID:    in.TenantID,
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		Filename:    in.Filename,
		BlobRef:     blobRef,
		Size:        in.Size,
		Status:      domain.StatusUploaded,
		Progress:    0,
		CreatedAt:   now,
	}

	if err := uc.Repo.Create(ctx, video); err != nil {
		return domain.Video{}, wrapRepo(err)
	}

	if uc.Bus != nil {
		uc.Bus.Publish(video.TenantID, ports.Event{
			Type:     ports.EventVideoUploaded,
			VideoID:  video.ID,
			TenantID: video.TenantID,
			Payload: map[string]interface{}{
				"title":     video.Title,
				"status":    string(video.Status),
				"createdAt": video.CreatedAt,
				"ownerRef":  video.OwnerID,
				"size":      video.Size,
			},
		})
	}

	if uc.Pipeline != nil {
		if _, err := uc.Pipeline.Schedule(ctx, video.ID); err != nil {
			return domain.Video{}, fmt.Errorf("schedule: %w", err)
		}
	}

	return video, nil
}

func (uc Intake) newID() domain.VideoID {
	if uc.NewID != nil {
		return uc.NewID()
	}
	return domain.VideoID(fmt.Sprintf("v-%d", time.Now().UnixNano()))
}
