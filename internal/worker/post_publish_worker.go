package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"claira-social/internal/metrics"
	"claira-social/internal/model"
	"claira-social/internal/platform/rabbitmq"
)

const impressionsMetric = "impressions"

type PostStatusStore interface {
	GetByID(ctx context.Context, postID uint) (*model.Post, error)
	TransitionStatus(ctx context.Context, postID uint, from, to model.PostStatus, publishedAt *time.Time) (bool, error)
}

type ActiveAccountFinder interface {
	FindActive(ctx context.Context, userID uint, platform model.Platform) (*model.SocialAccount, error)
}

type AnalyticsRecorder interface {
	Record(ctx context.Context, event *model.AnalyticsEvent) error
}

type StatsInvalidator interface {
	MarkDirty(ctx context.Context, userID uint) error
}

// PlatformPublisher pushes a post to one platform on behalf of a linked
// account.
type PlatformPublisher interface {
	Publish(ctx context.Context, post *model.Post, account *model.SocialAccount) error
}

// StubPlatformPublisher accepts every post without calling the platform.
type StubPlatformPublisher struct{}

func (StubPlatformPublisher) Publish(context.Context, *model.Post, *model.SocialAccount) error {
	return nil
}

type PostPublishWorker struct {
	conn      *amqp.Connection
	queueName string

	posts     PostStatusStore
	accounts  ActiveAccountFinder
	analytics AnalyticsRecorder
	stats     StatsInvalidator
	publisher PlatformPublisher
	now       func() time.Time
	log       zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPostPublishWorker(
	conn *amqp.Connection,
	queueName string,
	posts PostStatusStore,
	accounts ActiveAccountFinder,
	analytics AnalyticsRecorder,
	stats StatsInvalidator,
	publisher PlatformPublisher,
	log zerolog.Logger,
) *PostPublishWorker {
	if publisher == nil {
		publisher = StubPlatformPublisher{}
	}
	return &PostPublishWorker{
		conn:      conn,
		queueName: queueName,
		posts:     posts,
		accounts:  accounts,
		analytics: analytics,
		stats:     stats,
		publisher: publisher,
		now:       time.Now,
		log:       log.With().Str("component", "post_publish_worker").Logger(),
	}
}

func (w *PostPublishWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.log.Warn().Msg("delivery channel closed")
					return
				}

				var job model.PostPublishJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					w.log.Error().Err(err).Msg("decode post job failed")
					metrics.PostJobsTotal.WithLabelValues("consume", "bad_payload").Inc()
					_ = d.Nack(false, false)
					continue
				}

				outcome, err := w.handle(workerCtx, job)
				if err != nil {
					// the post stays SCHEDULED, so the next dispatch retries it
					w.log.Error().Err(err).Uint("post_id", job.PostID).Msg("publish post failed")
					metrics.PostJobsTotal.WithLabelValues("consume", "error").Inc()
					_ = d.Nack(false, false)
					continue
				}

				metrics.PostJobsTotal.WithLabelValues("consume", outcome).Inc()
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// handle publishes the post to each of its platforms and settles its status.
// It returns the job outcome used for metrics.
func (w *PostPublishWorker) handle(ctx context.Context, job model.PostPublishJob) (string, error) {
	post, err := w.posts.GetByID(ctx, job.PostID)
	if err != nil {
		return "", err
	}
	if post == nil || post.Status != model.PostScheduled {
		return "skipped", nil
	}

	platforms := job.Platforms
	if len(platforms) == 0 {
		platforms = post.Platforms
	}

	var published []model.Platform
	failed := len(platforms) == 0
	for _, platform := range platforms {
		account, err := w.accounts.FindActive(ctx, post.UserID, platform)
		if err != nil {
			return "", err
		}
		if account == nil {
			w.log.Warn().Uint("post_id", post.ID).Str("platform", string(platform)).Msg("no linked account for platform")
			failed = true
			continue
		}
		if err := w.publisher.Publish(ctx, post, account); err != nil {
			w.log.Warn().Err(err).Uint("post_id", post.ID).Str("platform", string(platform)).Msg("platform rejected post")
			failed = true
			continue
		}
		published = append(published, platform)
	}

	to := model.PostPublished
	var publishedAt *time.Time
	if failed {
		to = model.PostFailed
	} else {
		now := w.now()
		publishedAt = &now
	}

	changed, err := w.posts.TransitionStatus(ctx, post.ID, model.PostScheduled, to, publishedAt)
	if err != nil {
		return "", err
	}
	if !changed {
		return "skipped", nil
	}

	for _, platform := range published {
		event := &model.AnalyticsEvent{
			UserID:     post.UserID,
			PostID:     post.ID,
			Platform:   platform,
			Metric:     impressionsMetric,
			Value:      0,
			RecordedAt: w.now(),
		}
		if err := w.analytics.Record(ctx, event); err != nil {
			w.log.Warn().Err(err).Uint("post_id", post.ID).Msg("record impressions failed")
		}
	}
	if w.stats != nil {
		if err := w.stats.MarkDirty(ctx, post.UserID); err != nil {
			w.log.Warn().Err(err).Uint("user_id", post.UserID).Msg("mark dashboard dirty failed")
		}
	}

	if failed {
		return "failed", nil
	}
	return "published", nil
}

func (w *PostPublishWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
