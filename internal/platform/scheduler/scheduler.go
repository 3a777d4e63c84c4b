package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
)

var (
	ErrEmptyJobName  = errors.New("job name is required")
	ErrEmptyCronExpr = errors.New("cron expression is required")
)

// Service wraps a gocron scheduler. Jobs never overlap with themselves; a
// run that is still busy when the next tick fires causes that tick to be
// skipped.
type Service struct {
	scheduler gocron.Scheduler
	logger    *logging.Logger
	stopOnce  sync.Once
	stopErr   error
}

func New(logger *logging.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Component("scheduler")

	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("scheduler job panicked",
						"job_id", jobID.String(),
						"job_name", jobName,
						"panic", recoverData,
					)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	return &Service{scheduler: sched, logger: logger}, nil
}

func (s *Service) Start() {
	s.logger.Info("scheduler starting", "jobs", len(s.scheduler.Jobs()))
	s.scheduler.Start()
}

func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddCronJob registers task under a standard five-field cron expression.
func (s *Service) AddCronJob(name, cronExpr string, task func(ctx context.Context)) (gocron.Job, error) {
	name = strings.TrimSpace(name)
	cronExpr = strings.TrimSpace(cronExpr)
	if name == "" {
		return nil, ErrEmptyJobName
	}
	if cronExpr == "" {
		return nil, ErrEmptyCronExpr
	}

	jobLogger := s.logger.With("job_name", name, "cron", cronExpr)
	wrapped := func() {
		jobLogger.Debug("scheduler job started")
		task(context.Background())
		jobLogger.Debug("scheduler job completed")
	}

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(wrapped),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		jobLogger.Error("register scheduler job failed", "error", err)
		return nil, err
	}
	jobLogger.Info("scheduler job registered")
	return job, nil
}
