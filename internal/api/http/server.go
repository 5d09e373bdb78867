package apihttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
	"videoingest/internal/usecase"
)

// IntakeUseCase persists an uploaded video and schedules it for
// processing (spec.md §4.6).
type IntakeUseCase interface {
	Execute(ctx context.Context, in usecase.IntakeInput) (domain.Video, error)
}

// GetVideoUseCase resolves a single tenant-scoped video.
type GetVideoUseCase interface {
	Execute(ctx context.Context, tenantID domain.TenantID, id domain.VideoID) (domain.Video, error)
}

// ListVideosUseCase resolves a tenant-scoped, filtered video listing.
type ListVideosUseCase interface {
	Execute(ctx context.Context, filter domain.VideoFilter) ([]domain.Video, error)
}

// ProcessingStatusUseCase resolves a video's pipeline progress.
type ProcessingStatusUseCase interface {
	Execute(ctx context.Context, tenantID domain.TenantID, id domain.VideoID) (usecase.ProcessingStatus, error)
}

// StreamVideoUseCase opens a video's blob for the Range Streamer.
type StreamVideoUseCase interface {
	Execute(ctx context.Context, tenantID domain.TenantID, id domain.VideoID) (usecase.StreamResult, error)
}

// DeleteVideoUseCase removes a terminal video's record.
type DeleteVideoUseCase interface {
	Execute(ctx context.Context, tenantID domain.TenantID, id domain.VideoID) error
}

// Server is the HTTP surface: Intake, video CRUD, the Range Streamer,
// and the Push Hub, assembled via functional options in the teacher's
// ServerOption idiom.
type Server struct {
	intake           IntakeUseCase
	getVideo         GetVideoUseCase
	listVideos       ListVideosUseCase
	processingStatus ProcessingStatusUseCase
	streamVideo      StreamVideoUseCase
	deleteVideo      DeleteVideoUseCase

	streamContentType  string
	streamCacheControl string

	bus       ports.EventBus
	authorize func(r *http.Request, tenantID domain.TenantID) bool

	logger  *slog.Logger
	handler http.Handler
	wsHub   *wsHub
}

type ServerOption func(*Server)

func WithIntake(uc IntakeUseCase) ServerOption {
	return func(s *Server) { s.intake = uc }
}

func WithGetVideo(uc GetVideoUseCase) ServerOption {
	return func(s *Server) { s.getVideo = uc }
}

func WithListVideos(uc ListVideosUseCase) ServerOption {
	return func(s *Server) { s.listVideos = uc }
}

func WithProcessingStatus(uc ProcessingStatusUseCase) ServerOption {
	return func(s *Server) { s.processingStatus = uc }
}

func WithStreamVideo(uc StreamVideoUseCase) ServerOption {
	return func(s *Server) { s.streamVideo = uc }
}

func WithDeleteVideo(uc DeleteVideoUseCase) ServerOption {
	return func(s *Server) { s.deleteVideo = uc }
}

func WithStreamOptions(contentType, cacheControl string) ServerOption {
	return func(s *Server) {
		s.streamContentType = contentType
		s.streamCacheControl = cacheControl
	}
}

// WithEventBus wires the Push Hub to the Event Bus.
func WithEventBus(bus ports.EventBus) ServerOption {
	return func(s *Server) { s.bus = bus }
}

// WithJoinAuthorizer installs the external predicate the Push Hub must
// consult before subscribing a client to a tenant's room (spec.md §4.5).
func WithJoinAuthorizer(authorize func(r *http.Request, tenantID domain.TenantID) bool) ServerOption {
	return func(s *Server) { s.authorize = authorize }
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// BroadcastClientCount reports how many Push Hub clients are connected,
// for the metrics gauge.
func (s *Server) BroadcastClientCount() int {
	if s.wsHub == nil {
		return 0
	}
	return s.wsHub.clientCount()
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		streamContentType:  "video/mp4",
		streamCacheControl: "public, max-age=86400",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.bus == nil {
		// A Server with no Event Bus still serves Intake/CRUD/streaming;
		// the Push Hub endpoint simply has nothing to relay.
		s.wsHub = nil
	} else {
		s.wsHub = newWSHub(s.bus, s.authorize, s.logger)
		go s.wsHub.run()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/videos", s.handleVideos)
	mux.HandleFunc("/videos/", s.handleVideoByID)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	if s.wsHub != nil {
		mux.HandleFunc("/events", s.handleEvents)
	}

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "videoingest",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/healthz"
		}),
	)
	s.handler = recoveryMiddleware(s.logger, rateLimitMiddleware(100, 200, metricsMiddleware(corsMiddleware(nil, traced))))
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := newWSClient(s.wsHub, conn)
	s.wsHub.register <- client
	go client.writePump()
	client.readPump(r)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close gracefully shuts down the Push Hub, disconnecting all clients.
func (s *Server) Close() {
	if s.wsHub != nil {
		s.wsHub.Close()
	}
}
