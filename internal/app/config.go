package app

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	LogLevel        string
	LogFormat       string

	BlobDriver   string // "memory" or "s3"
	BlobDir      string // base dir for a future file-backed driver; unused by memory/s3
	BlobMaxBytes int64  // loaded from BLOB_MAX_BYTES but not read by Intake, which applies its own fixed 2 GiB cap (maxUploadBytes)
	BlobS3Bucket string // required when BlobDriver == "s3"

	PipelineWorkers        int
	PipelineProbeTimeoutMs int64
	PipelineStepDelaysMs   []int64 // per-step artificial delay, teacher-style deterministic simulation

	FFProbePath string

	AnalyzerFlagThreshold int

	StreamerContentType  string
	StreamerCacheControl string

	BusSubscriberBuffer int

	CORSAllowedOrigins []string // loaded from CORS_ALLOWED_ORIGINS; cmd/server does not pass it to the HTTP server, whose CORS middleware allows every origin
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "videoingest"),
		MongoCollection: getEnv("MONGO_COLLECTION", "videos"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),

		BlobDriver:   strings.ToLower(getEnv("BLOB_DRIVER", "memory")),
		BlobDir:      getEnv("BLOB_DIR", "data/blobs"),
		BlobMaxBytes: getEnvInt64("BLOB_MAX_BYTES", 2<<30),
		BlobS3Bucket: getEnv("BLOB_S3_BUCKET", ""),

		PipelineWorkers:        int(getEnvInt64("PIPELINE_WORKERS", 4)),
		PipelineProbeTimeoutMs: getEnvInt64("PIPELINE_PROBE_TIMEOUT_MS", 5000),
		PipelineStepDelaysMs:   getEnvInt64CSV("PIPELINE_STEP_DELAYS_MS", []int64{1000, 1500, 1200, 2000, 1500, 1000}),

		FFProbePath: getEnv("FFPROBE_PATH", "ffprobe"),

		AnalyzerFlagThreshold: int(getEnvInt64("ANALYZER_FLAG_THRESHOLD", 30)),

		StreamerContentType:  getEnv("STREAMER_CONTENT_TYPE", "video/mp4"),
		StreamerCacheControl: getEnv("STREAMER_CACHE_CONTROL", "public, max-age=86400"),

		BusSubscriberBuffer: int(getEnvInt64("BUS_SUBSCRIBER_BUFFER", 64)),

		CORSAllowedOrigins: parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func parseCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}

// getEnvInt64CSV parses a comma-separated list of non-negative integers,
// falling back to fallback whole-cloth on any malformed entry rather than
// partially applying it — a partial delay table would silently
// reorder the pipeline's step timing.
func getEnvInt64CSV(key string, fallback []int64) []int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || v < 0 {
			return fallback
		}
		out = append(out, v)
	}
	return out
}
