// Package pipeline implements the Pipeline Engine: a fixed worker pool
// that advances each Video through validate -> analyze -> terminal,
// publishing progress events as it goes and tolerating step failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"videoingest/internal/analyzer"
	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
	"videoingest/internal/probe/fallback"
)

// checkpoints is the fixed, normative progress sequence a job publishes
// during processing, not counting the initial progress=10 start event.
var checkpoints = [6]int{20, 35, 50, 65, 80, 95}

// Config parameterizes worker count, probe timeout, and inter-checkpoint
// pacing. Zero values fall back to the reference defaults.
type Config struct {
	Workers       int
	ProbeTimeout  time.Duration
	StepDelays    [6]time.Duration
	FlagThreshold int
}

// DefaultConfig returns the reference pacing: 4 workers, a 5s probe
// timeout, and the spec's suggested 1.0-2.0s inter-checkpoint delays.
func DefaultConfig() Config {
	return Config{
		Workers:      4,
		ProbeTimeout: 5 * time.Second,
		StepDelays: [6]time.Duration{
			1000 * time.Millisecond,
			1500 * time.Millisecond,
			1200 * time.Millisecond,
			2000 * time.Millisecond,
			1500 * time.Millisecond,
			1000 * time.Millisecond,
		},
		FlagThreshold: analyzer.DefaultConfig().FlagThreshold,
	}
}

var ErrClosed = errors.New("pipeline is shutting down")

// Engine is the Pipeline Engine. One worker runs a job from uploaded
// acceptance to terminal status; the active-job set rejects duplicate
// schedules for the same id.
type Engine struct {
	cfg   Config
	repo  ports.MetadataStore
	blobs ports.BlobStore
	probe ports.Probe
	bus   ports.EventBus
	clock ports.Clock

	jobs chan domain.VideoID

	mu     sync.Mutex
	active map[domain.VideoID]struct{}

	closing  chan struct{}
	closeOne sync.Once
	deadline atomic.Value // stores time.Time once Shutdown's deadline elapses relative to now

	wg sync.WaitGroup
}

var _ ports.Pipeline = (*Engine)(nil)

// New starts cfg.Workers long-running workers and returns the Engine.
func New(cfg Config, repo ports.MetadataStore, blobs ports.BlobStore, probe ports.Probe, bus ports.EventBus, clock ports.Clock) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultConfig().ProbeTimeout
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	e := &Engine{
		cfg:     cfg,
		repo:    repo,
		blobs:   blobs,
		probe:   probe,
		bus:     bus,
		clock:   clock,
		jobs:    make(chan domain.VideoID, 4096),
		active:  make(map[domain.VideoID]struct{}),
		closing: make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	return e
}

func (e *Engine) Schedule(ctx context.Context, id domain.VideoID) (ports.ScheduleResult, error) {
	select {
	case <-e.closing:
		return "", ErrClosed
	default:
	}

	v, err := e.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if v.Status.Terminal() {
		return ports.ScheduleTerminal, nil
	}

	e.mu.Lock()
	if _, running := e.active[id]; running {
		e.mu.Unlock()
		return ports.ScheduleAlreadyRunning, nil
	}
	e.active[id] = struct{}{}
	e.mu.Unlock()

	select {
	case e.jobs <- id:
	default:
		e.mu.Lock()
		delete(e.active, id)
		e.mu.Unlock()
		return "", fmt.Errorf("pipeline queue full")
	}
	return ports.ScheduleAccepted, nil
}

// Shutdown stops accepting new schedules and gives in-flight jobs until
// deadline to reach terminal; jobs still running at the deadline observe
// it at their next step boundary and transition to failed(step=shutdown).
func (e *Engine) Shutdown(deadline time.Duration) {
	e.closeOne.Do(func() { close(e.closing) })
	e.deadline.Store(e.clock.Now().Add(deadline))

	done := make(chan struct{})
	go func() { e.wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(deadline + time.Second):
	}
}

func (e *Engine) deadlineElapsed() bool {
	v := e.deadline.Load()
	if v == nil {
		return false
	}
	return e.clock.Now().After(v.(time.Time))
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for id := range e.jobs {
		e.runJob(id)
	}
}

func (e *Engine) runJob(id domain.VideoID) {
	defer func() {
		e.mu.Lock()
		delete(e.active, id)
		e.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			e.failJob(context.Background(), id, "panic", fmt.Sprintf("recovered: %v", r))
		}
	}()

	ctx := context.Background()
	v, err := e.repo.Get(ctx, id)
	if err != nil {
		return
	}

	if !e.transition(&v, domain.StatusProcessing) {
		return
	}
	v.Progress = 10
	now := e.clock.Now()
	v.ProcessingStartedAt = &now
	if err := e.repo.Update(ctx, v); err != nil {
		return
	}
	e.publish(v.TenantID, id, ports.EventVideoProcessingStart, map[string]interface{}{
		"progress": 10,
		"step":     "Starting video processing",
	})

	if e.deadlineElapsed() {
		e.failJob(ctx, id, "shutdown", "shutdown deadline elapsed")
		return
	}

	probeResult, fatal := e.runProbeStep(ctx, v)
	if fatal != nil {
		e.failJob(ctx, id, "validate", fatal.Error())
		return
	}
	v.ProbeResult = &probeResult

	var analysis analyzer.Result
	for i, target := range checkpoints {
		if e.deadlineElapsed() {
			e.failJob(ctx, id, "shutdown", "shutdown deadline elapsed")
			return
		}

		if i == 4 { // after checkpoint 65 publishes, before checkpoint 80
			analysis = e.runAnalyzerStep(&v)
		}

		v.Progress = target
		if err := e.repo.Update(ctx, v); err != nil {
			e.failJob(ctx, id, "persist", err.Error())
			return
		}
		e.publish(v.TenantID, id, ports.EventVideoProgressUpdate, map[string]interface{}{
			"progress": target,
			"step":     fmt.Sprintf("checkpoint-%d", target),
		})

		if delay := e.cfg.StepDelays[i]; delay > 0 {
			select {
			case <-time.After(delay):
			case <-e.closing:
				if e.deadlineElapsed() {
					e.failJob(ctx, id, "shutdown", "shutdown deadline elapsed")
					return
				}
			}
		}
	}

	v.Sensitivity = &domain.Sensitivity{
		Score:             analysis.Score,
		Verdict:           analysis.Verdict,
		CategoryBreakdown: convertBreakdown(analysis.CategoryBreakdown),
		DetectedIssues:    convertIssues(analysis.DetectedIssues),
		Rules:             analysis.Rules,
		Summary:           analysis.Summary,
		AnalyzedAt:        e.clock.Now(),
	}
	v.Progress = 100
	completed := e.clock.Now()
	v.ProcessingCompletedAt = &completed
	terminal := domain.StatusSafe
	if analysis.Verdict == "flagged" {
		terminal = domain.StatusFlagged
	}
	if !e.transition(&v, terminal) {
		e.failJob(ctx, id, "transition", fmt.Sprintf("%s -> %s rejected by FSM", v.Status, terminal))
		return
	}

	if err := e.repo.Update(ctx, v); err != nil {
		e.failJob(ctx, id, "persist", err.Error())
		return
	}
	e.publish(v.TenantID, id, ports.EventVideoProcessingComplete, map[string]interface{}{
		"progress": 100,
		"status":   string(v.Status),
		"analysis": v.Sensitivity,
	})
}

// runProbeStep validates the blob via the real Probe with a bounded
// timeout, falling back to extension/size validation on timeout or
// probe failure. Only a fallback rejection is fatal.
func (e *Engine) runProbeStep(ctx context.Context, v domain.Video) (domain.ProbeResult, error) {
	blob, err := e.blobs.Open(ctx, v.BlobRef)
	if err == nil {
		probeCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
		result, probeErr := e.probe.Probe(probeCtx, blob, v.Filename)
		cancel()
		blob.Close()
		if probeErr == nil {
			return result, nil
		}
	}

	size := v.Size
	if blob != nil {
		if s := blob.Size(); s > 0 {
			size = s
		}
	}
	return fallback.Validate(v.Filename, size)
}

// runAnalyzerStep recovers a panicking Analyze, maps it to a neutral,
// safe-by-default result and appends an "analyze" error entry to v.
func (e *Engine) runAnalyzerStep(v *domain.Video) (result analyzer.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = analyzer.Result{Score: 0, Verdict: "safe", Rules: []string{"Passed all content checks"}, Summary: "Content passed sensitivity review"}
			v.Errors = append(v.Errors, domain.ErrorEntry{Step: "analyze", Message: fmt.Sprintf("recovered: %v", r), At: e.clock.Now()})
		}
	}()
	threshold := e.cfg.FlagThreshold
	if threshold == 0 {
		threshold = analyzer.DefaultConfig().FlagThreshold
	}
	return analyzer.Analyze(analyzer.Metadata{
		Title:       v.Title,
		Description: v.Description,
		Filename:    v.Filename,
	}, analyzer.Config{FlagThreshold: threshold})
}

// transition advances v.Status to to, refusing any edge
// domain.CanTransition rejects so a worker can never skip or
// backtrack the pipeline FSM. It reports whether the move was
// applied.
func (e *Engine) transition(v *domain.Video, to domain.Status) bool {
	if !domain.CanTransition(v.Status, to) {
		return false
	}
	v.Status = to
	return true
}

func (e *Engine) failJob(ctx context.Context, id domain.VideoID, step, message string) {
	v, err := e.repo.Get(ctx, id)
	if err != nil {
		return
	}
	if v.Status.Terminal() {
		return
	}
	e.transition(&v, domain.StatusFailed)
	v.Errors = append(v.Errors, domain.ErrorEntry{Step: step, Message: message, At: e.clock.Now()})
	_ = e.repo.Update(ctx, v)
	e.publish(v.TenantID, id, ports.EventVideoProcessingFailed, map[string]interface{}{
		"progress": v.Progress,
		"step":     step,
		"message":  message,
	})
}

func (e *Engine) publish(tenantID domain.TenantID, id domain.VideoID, eventType ports.EventType, payload interface{}) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(tenantID, ports.Event{Type: eventType, VideoID: id, TenantID: tenantID, Payload: payload})
}

func convertBreakdown(in map[string]analyzer.CategoryResult) map[string]domain.CategoryResult {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]domain.CategoryResult, len(in))
	for k, v := range in {
		out[k] = domain.CategoryResult{Score: v.Score, Keywords: v.Keywords}
	}
	return out
}

func convertIssues(in []analyzer.DetectedIssue) []domain.DetectedIssue {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.DetectedIssue, 0, len(in))
	for _, i := range in {
		out = append(out, domain.DetectedIssue{Category: i.Category, Score: i.Score, Keywords: i.Keywords})
	}
	return out
}
