package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"claira-social/internal/metrics"
	"claira-social/internal/model"
)

// JobTimeout bounds one dispatch run.
const JobTimeout = 50 * time.Second

type DuePostSource interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.Post, error)
}

type JobPublisher interface {
	Publish(ctx context.Context, job model.PostPublishJob) error
}

// Dispatcher hands due posts to the publish queue on a cron schedule.
type Dispatcher struct {
	ctab      *crontab.Crontab
	posts     DuePostSource
	publisher JobPublisher
	batchSize int
	now       func() time.Time
	log       zerolog.Logger
}

func NewDispatcher(posts DuePostSource, publisher JobPublisher, batchSize int, log zerolog.Logger) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Dispatcher{
		ctab:      crontab.New(),
		posts:     posts,
		publisher: publisher,
		batchSize: batchSize,
		now:       time.Now,
		log:       log.With().Str("component", "dispatcher").Logger(),
	}
}

// Start registers the dispatch job. The crontab runs it in its own goroutine.
func (d *Dispatcher) Start(schedule string) error {
	if err := d.ctab.AddJob(schedule, d.tick); err != nil {
		return fmt.Errorf("add dispatch job failed: %w", err)
	}
	d.log.Info().Str("schedule", schedule).Msg("post dispatcher scheduled")
	return nil
}

func (d *Dispatcher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
	defer cancel()

	n, err := d.DispatchDue(ctx, d.now())
	if err != nil {
		d.log.Error().Err(err).Int("dispatched", n).Msg("dispatch due posts failed")
		return
	}
	if n > 0 {
		d.log.Info().Int("dispatched", n).Msg("dispatched due posts")
	}
}

// DispatchDue publishes one job per scheduled post whose time is at or before
// now. It returns how many jobs were published. A post that fails to publish
// stays SCHEDULED and is picked up again by the next run.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	posts, err := d.posts.ListDue(ctx, now, d.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range posts {
		job := model.PostPublishJob{PostID: p.ID, UserID: p.UserID, Platforms: p.Platforms}
		if err := d.publisher.Publish(ctx, job); err != nil {
			metrics.PostJobsTotal.WithLabelValues("dispatch", "error").Inc()
			return sent, fmt.Errorf("dispatch post %d failed: %w", p.ID, err)
		}
		metrics.PostJobsTotal.WithLabelValues("dispatch", "ok").Inc()
		sent++
	}
	return sent, nil
}

func (d *Dispatcher) Stop() {
	d.ctab.Shutdown()
}
