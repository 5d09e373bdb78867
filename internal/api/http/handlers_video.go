package apihttp

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
	"videoingest/internal/usecase"
)

// caller is the (callerId, callerTenantId) pair spec.md §6 says every
// request carries, resolved by bearer-style authentication upstream of
// this module. It is read off headers an authenticating reverse proxy
// or API gateway is expected to set after verifying the credential.
type caller struct {
	userID   domain.UserID
	tenantID domain.TenantID
}

func callerFromRequest(r *http.Request) (caller, error) {
	tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-Id"))
	userID := strings.TrimSpace(r.Header.Get("X-Caller-Id"))
	if tenantID == "" || userID == "" {
		return caller{}, errors.New("missing caller identity")
	}
	return caller{userID: domain.UserID(userID), tenantID: domain.TenantID(tenantID)}, nil
}

// videoSummary is the trimmed representation returned by intake and the
// listing endpoint; GET /videos/{id} returns the full domain.Video
// (VideoDetail) instead, including sensitivity once terminal.
type videoSummary struct {
	ID        domain.VideoID  `json:"id"`
	TenantID  domain.TenantID `json:"tenantId"`
	Title     string          `json:"title"`
	Filename  string          `json:"filename"`
	Status    domain.Status   `json:"status"`
	Progress  int             `json:"progress"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toSummary(v domain.Video) videoSummary {
	return videoSummary{
		ID:        v.ID,
		TenantID:  v.TenantID,
		Title:     v.Title,
		Filename:  v.Filename,
		Status:    v.Status,
		Progress:  v.Progress,
		CreatedAt: v.CreatedAt,
	}
}

const maxIntakeMemory = 32 << 20 // 32 MiB held in memory before multipart spills to temp files

// handleVideos dispatches POST (intake) and GET (list) on the collection
// resource.
func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleIntake(w, r)
	case http.MethodGet:
		s.handleListVideos(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxIntakeMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing file part")
		return
	}
	defer file.Close()

	in := usecase.IntakeInput{
		TenantID:    caller.tenantID,
		OwnerID:     caller.userID,
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Filename:    header.Filename,
		Size:        header.Size,
		File:        file,
	}

	video, err := s.intake.Execute(r.Context(), in)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidUpload) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]videoSummary{"video": toSummary(video)})
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}

	filter := domain.VideoFilter{TenantID: caller.tenantID, Search: r.URL.Query().Get("search")}
	if statusParam := strings.TrimSpace(r.URL.Query().Get("status")); statusParam != "" {
		status := domain.Status(statusParam)
		filter.Status = &status
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter.Offset = offset
	}

	videos, err := s.listVideos.Execute(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	summaries := make([]videoSummary, 0, len(videos))
	for _, v := range videos {
		summaries = append(summaries, toSummary(v))
	}
	writeJSON(w, http.StatusOK, map[string][]videoSummary{"videos": summaries})
}

// handleVideoByID dispatches the /videos/{id}(/...) subtree.
func (s *Server) handleVideoByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/videos/")
	segments := strings.Split(rest, "/")
	if segments[0] == "" {
		writeError(w, http.StatusNotFound, "not_found", "video id is required")
		return
	}
	id := domain.VideoID(segments[0])

	switch {
	case len(segments) == 1:
		s.handleVideoRoot(w, r, id)
	case len(segments) == 2 && segments[1] == "processing-status":
		s.handleProcessingStatus(w, r, id)
	case len(segments) == 2 && segments[1] == "stream":
		s.handleStream(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
	}
}

func (s *Server) handleVideoRoot(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetVideo(w, r, id)
	case http.MethodDelete:
		s.handleDeleteVideo(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}
	video, err := s.getVideo.Execute(r.Context(), caller.tenantID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

type processingStatusResponse struct {
	Status      domain.Status       `json:"status"`
	Progress    int                 `json:"progress"`
	Sensitivity *domain.Sensitivity `json:"sensitivity,omitempty"`
	Errors      []domain.ErrorEntry `json:"errors,omitempty"`
	Timeline    struct {
		CreatedAt   time.Time  `json:"createdAt"`
		CompletedAt *time.Time `json:"completedAt,omitempty"`
	} `json:"timeline"`
}

func (s *Server) handleProcessingStatus(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}
	status, err := s.processingStatus.Execute(r.Context(), caller.tenantID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := processingStatusResponse{
		Status:      status.Status,
		Progress:    status.Progress,
		Sensitivity: status.Sensitivity,
		Errors:      status.Errors,
	}
	resp.Timeline.CreatedAt = status.CreatedAt
	resp.Timeline.CompletedAt = status.CompletedAt
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}
	if err := s.deleteVideo.Execute(r.Context(), caller.tenantID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStream implements the Range Streamer's HTTP contract (spec.md
// §4.3): 200 full-content, 206 partial-content, or 416 unsatisfiable.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, id domain.VideoID) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}

	result, err := s.streamVideo.Execute(r.Context(), caller.tenantID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer result.Blob.Close()

	size := result.Blob.Size()
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", s.streamContentType)
	w.Header().Set("Cache-Control", s.streamCacheControl)

	rangeHeader := r.Header.Get("Range")
	rng, present, satisfiable := usecase.ParseRange(rangeHeader, size)
	if present && !satisfiable {
		w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	if !present {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		s.copyRange(w, r, result.Blob, 0, size-1)
		return
	}

	length := rng.End - rng.Start + 1
	w.Header().Set("Content-Range", "bytes "+strconv.FormatInt(rng.Start, 10)+"-"+strconv.FormatInt(rng.End, 10)+"/"+strconv.FormatInt(size, 10))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)
	s.copyRange(w, r, result.Blob, rng.Start, rng.End)
}

const streamChunkSize = 256 << 10 // 256 KiB

// copyRange streams [start, end] from blob to w in fixed-size chunks,
// stopping early on client disconnect or a read error without
// corrupting other in-flight streams.
func (s *Server) copyRange(w http.ResponseWriter, r *http.Request, blob ports.BlobReader, start, end int64) {
	ctx := r.Context()
	buf := make([]byte, streamChunkSize)
	off := start
	for off <= end {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n := len(buf)
		if remaining := end - off + 1; remaining < int64(n) {
			n = int(remaining)
		}
		read, err := blob.ReadAt(ctx, buf[:n], off)
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return
			}
			off += int64(read)
		}
		if err != nil {
			if err != io.EOF {
				s.logger.Debug("stream range copy interrupted", slog.String("error", err.Error()))
			}
			return
		}
	}
}
