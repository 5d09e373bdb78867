package domain

import "time"

// VideoID is an opaque, server-assigned identifier for a Video.
type VideoID string

// TenantID is an opaque identifier scoping visibility and event routing.
type TenantID string

// UserID identifies the principal that created a Video.
type UserID string

// Video is the unit of ingestion and lifecycle (see the pipeline FSM in
// status.go). Only the owning pipeline worker for a given ID may mutate
// it; all other readers treat it as a snapshot.
type Video struct {
	ID          VideoID    `json:"id"`
	TenantID    TenantID   `json:"tenantId"`
	OwnerID     UserID     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Filename    string     `json:"filename"`
	BlobRef     string     `json:"blobRef"`
	Size        int64      `json:"size"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	Sensitivity *Sensitivity `json:"sensitivity,omitempty"`
	ProbeResult *ProbeResult `json:"probeResult,omitempty"`
	Errors      []ErrorEntry `json:"errors,omitempty"`

	CreatedAt             time.Time  `json:"createdAt"`
	ProcessingStartedAt   *time.Time `json:"processingStartedAt,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processingCompletedAt,omitempty"`
}

// ErrorEntry is an append-only record of a non-fatal or fatal condition
// observed while processing a Video.
type ErrorEntry struct {
	Step    string    `json:"step"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ProbeResult is the container/codec summary produced by the Probe step,
// possibly derived from the fallback validator instead of the real probe.
type ProbeResult struct {
	Codec                 string  `json:"codec"`
	Container             string  `json:"container"`
	DurationSec           float64 `json:"durationSec"`
	WidthPx               int     `json:"widthPx,omitempty"`
	HeightPx              int     `json:"heightPx,omitempty"`
	ValidatedWithFallback bool    `json:"validatedWithFallback"`
}

// Sensitivity is the terminal output of the Sensitivity Analyzer, present
// on a Video only once status has reached safe or flagged.
type Sensitivity struct {
	Score             int                       `json:"score"`
	Verdict           string                    `json:"verdict"`
	CategoryBreakdown map[string]CategoryResult `json:"categoryBreakdown,omitempty"`
	DetectedIssues    []DetectedIssue           `json:"detectedIssues,omitempty"`
	Rules             []string                  `json:"rules"`
	Summary           string                    `json:"summary"`
	AnalyzedAt        time.Time                 `json:"analyzedAt"`
}

// CategoryResult is one entry of Sensitivity.CategoryBreakdown.
type CategoryResult struct {
	Score    int      `json:"score"`
	Keywords []string `json:"keywords"`
}

// DetectedIssue is a flat, ordered view of the categories that scored
// above zero, mirroring CategoryBreakdown for clients that prefer a list.
type DetectedIssue struct {
	Category string   `json:"category"`
	Score    int      `json:"score"`
	Keywords []string `json:"keywords"`
}

// VideoFilter scopes a listing query to a tenant plus optional refinements.
type VideoFilter struct {
	TenantID TenantID `json:"tenantId"`
	Status   *Status  `json:"status,omitempty"`
	Search   string   `json:"search,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}
