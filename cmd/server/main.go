package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"

	apihttp "videoingest/internal/api/http"
	"videoingest/internal/app"
	blobmemory "videoingest/internal/blob/memory"
	blobs3 "videoingest/internal/blob/s3"
	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
	"videoingest/internal/eventbus"
	"videoingest/internal/metrics"
	"videoingest/internal/pipeline"
	"videoingest/internal/probe/ffprobe"
	mongorepo "videoingest/internal/repository/mongo"
	"videoingest/internal/telemetry"
	"videoingest/internal/usecase"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "videoingest",
		attribute.String("videoingest.blob_driver", cfg.BlobDriver),
		attribute.Int("videoingest.pipeline_workers", cfg.PipelineWorkers),
	)
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "videoingest"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("blobDriver", cfg.BlobDriver),
		slog.Int("pipelineWorkers", cfg.PipelineWorkers),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancelConnect()

	mongoMonitor := otelmongo.NewMonitor()
	mongoClient, err := mongorepo.Connect(connectCtx, cfg.MongoURI, options.Client().SetMonitor(mongoMonitor))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := mongorepo.NewRepository(mongoClient, cfg.MongoDatabase, cfg.MongoCollection)
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		logger.Error("blob store init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	prober := ffprobe.New(cfg.FFProbePath)
	bus := eventbus.New(cfg.BusSubscriberBuffer)

	stepDelays := [6]time.Duration{}
	for i := 0; i < 6 && i < len(cfg.PipelineStepDelaysMs); i++ {
		stepDelays[i] = time.Duration(cfg.PipelineStepDelaysMs[i]) * time.Millisecond
	}

	engine := pipeline.New(pipeline.Config{
		Workers:       cfg.PipelineWorkers,
		ProbeTimeout:  time.Duration(cfg.PipelineProbeTimeoutMs) * time.Millisecond,
		StepDelays:    stepDelays,
		FlagThreshold: cfg.AnalyzerFlagThreshold,
	}, repo, blobs, prober, bus, ports.SystemClock{})

	intakeUC := usecase.Intake{
		Repo:     repo,
		Blobs:    blobs,
		Bus:      bus,
		Pipeline: engine,
		Clock:    ports.SystemClock{},
		NewID:    func() domain.VideoID { return domain.VideoID(uuid.NewString()) },
	}
	getVideoUC := usecase.GetVideo{Repo: repo}
	listVideosUC := usecase.ListVideos{Repo: repo}
	statusUC := usecase.GetProcessingStatus{Repo: repo}
	streamUC := usecase.StreamVideo{Repo: repo, Blobs: blobs}
	deleteUC := usecase.DeleteVideo{Repo: repo}

	handler := apihttp.NewServer(
		apihttp.WithIntake(intakeUC),
		apihttp.WithGetVideo(getVideoUC),
		apihttp.WithListVideos(listVideosUC),
		apihttp.WithProcessingStatus(statusUC),
		apihttp.WithStreamVideo(streamUC),
		apihttp.WithDeleteVideo(deleteUC),
		apihttp.WithStreamOptions(cfg.StreamerContentType, cfg.StreamerCacheControl),
		apihttp.WithEventBus(bus),
		apihttp.WithLogger(logger),
	)

	go reportPushHubMetrics(rootCtx, handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	handler.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	engine.Shutdown(10 * time.Second)
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// newBlobStore selects the BlobStore/BlobWriter implementation per
// cfg.BlobDriver. "memory" is the dev/test profile; "s3" is the
// production profile, backed by the default AWS credential chain.
func newBlobStore(cfg app.Config) (interface {
	ports.BlobStore
	ports.BlobWriter
}, error) {
	switch cfg.BlobDriver {
	case "s3":
		sess, err := session.NewSession()
		if err != nil {
			return nil, err
		}
		return blobs3.New(sess, cfg.BlobS3Bucket), nil
	default:
		return blobmemory.New(), nil
	}
}

// reportPushHubMetrics periodically samples the connected websocket
// client count into the Prometheus gauge; the hub itself has no
// observer callback for this.
func reportPushHubMetrics(ctx context.Context, handler *apihttp.Server) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.PushHubClientsConnected.Set(float64(handler.BroadcastClientCount()))
		}
	}
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
