package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/league-scoring/internal/domain/jobscheduler"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const (
	JobFantasyRecalculate     = "fantasy-recalculate"
	JobPathFantasyRecalculate = "/v1/internal/jobs/fantasy-recalculate"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

// ErrJobQueueDisabled is returned when no queue backend is configured.
var ErrJobQueueDisabled = fmt.Errorf("%w: job queue is disabled", ErrDependencyUnavailable)

// noopJobQueue stands in when queueing is off. It never reports success so
// callers cannot mistake a dropped job for a queued one.
type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return ErrJobQueueDisabled
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type JobOrchestratorConfig struct {
	// RecalcDelay postpones the queued rebuild so that several result
	// submissions close together collapse into one run.
	RecalcDelay time.Duration
	DedupBucket time.Duration
}

type FantasyRecalcJobInput struct {
	DispatchID string
	LeagueID   string
	FixtureID  string
	// Trigger names the caller when no dispatch id was issued, e.g. "cron".
	Trigger string
}

// JobOrchestratorService queues fantasy recalculations and runs them when the
// queue calls back.
type JobOrchestratorService struct {
	recalcSvc    *FantasyRecalculationService
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	recalcSvc *FantasyRecalculationService,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RecalcDelay < 0 {
		cfg.RecalcDelay = 0
	}
	if cfg.DedupBucket <= 0 {
		cfg.DedupBucket = 5 * time.Minute
	}

	return &JobOrchestratorService{
		recalcSvc:    recalcSvc,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger.Component("job_orchestrator"),
		now:          time.Now,
	}
}

// EnqueueFantasyRecalculation queues a full rebuild triggered by fixtureID.
// Submissions for the same fixture inside one dedup bucket share a dispatch id.
func (s *JobOrchestratorService) EnqueueFantasyRecalculation(ctx context.Context, fixtureID string) error {
	now := s.now().UTC()
	dedupID := dedupKey(JobFantasyRecalculate, fixtureID, now.Add(s.cfg.RecalcDelay), s.cfg.DedupBucket)
	payload := map[string]any{
		"fixture_id":  fixtureID,
		"dispatch_id": dedupID,
	}

	event := jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    JobFantasyRecalculate,
		JobPath:    JobPathFantasyRecalculate,
		ScopeID:    fixtureID,
		Payload:    payload,
		OccurredAt: now,
	}
	if err := s.queue.Enqueue(ctx, JobPathFantasyRecalculate, payload, s.cfg.RecalcDelay, dedupID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		s.recordDispatchEvent(ctx, event)
		return fmt.Errorf("enqueue %s fixture=%s: %w", JobFantasyRecalculate, fixtureID, err)
	}
	event.Status = jobscheduler.StatusSent
	s.recordDispatchEvent(ctx, event)
	return nil
}

// RunFantasyRecalculation executes a queued or scheduled rebuild and records
// the outcome under the dispatch id.
func (s *JobOrchestratorService) RunFantasyRecalculation(ctx context.Context, input FantasyRecalcJobInput) (RecalculateResult, error) {
	if s.recalcSvc == nil {
		return RecalculateResult{}, fmt.Errorf("%w: fantasy recalculation is not configured", ErrDependencyUnavailable)
	}

	dispatchID := strings.TrimSpace(input.DispatchID)
	if dispatchID == "" {
		trigger := strings.TrimSpace(input.Trigger)
		if trigger == "" {
			trigger = "manual"
		}
		dispatchID = dedupKey(JobFantasyRecalculate, trigger, s.now(), time.Minute)
	}
	scopeID := strings.TrimSpace(input.LeagueID)
	if scopeID == "" {
		scopeID = strings.TrimSpace(input.FixtureID)
	}

	result, err := s.recalcSvc.Recalculate(ctx, RecalculateInput{LeagueID: input.LeagueID})
	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    JobFantasyRecalculate,
		JobPath:    JobPathFantasyRecalculate,
		ScopeID:    scopeID,
		Status:     jobscheduler.StatusCompleted,
		Payload: map[string]any{
			"league_count":  result.LeagueCount,
			"success_count": result.SuccessCount,
			"failed_count":  result.FailedCount,
		},
	}
	if err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
	}
	s.recordDispatchEvent(ctx, event)
	return result, err
}

func dedupKey(prefix, scopeID string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	scopeID = sanitizeDedupSegment(scopeID)
	return prefix + "-" + scopeID + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobOrchestratorService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
